package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGenerationInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		topic     string
		tone      string
		style     string
		count     int
		want      GenerationInput
		wantError bool
	}{
		{
			name:  "valid input",
			topic: "Coffee", tone: "bold", style: "photo", count: 3,
			want: GenerationInput{Topic: "Coffee", Tone: ToneBold, ImageStyle: ImageStylePhoto, Count: 3},
		},
		{
			name:  "topic is trimmed",
			topic: "  Remote work  ", tone: "friendly", style: "abstract", count: 4,
			want: GenerationInput{Topic: "Remote work", Tone: ToneFriendly, ImageStyle: ImageStyleAbstract, Count: 4},
		},
		{
			name:  "unknown tone and style use defaults",
			topic: "Coffee", tone: "sarcastic", style: "oil", count: 2,
			want: GenerationInput{Topic: "Coffee", Tone: ToneProfessional, ImageStyle: ImageStyleIllustration, Count: 2},
		},
		{
			name:  "zero count uses default",
			topic: "Coffee",
			want:  GenerationInput{Topic: "Coffee", Tone: ToneProfessional, ImageStyle: ImageStyleIllustration, Count: DefaultSlideCount},
		},
		{
			name:  "count above max is clamped",
			topic: "Coffee", count: 40,
			want: GenerationInput{Topic: "Coffee", Tone: ToneProfessional, ImageStyle: ImageStyleIllustration, Count: MaxSlideCount},
		},
		{
			name:  "negative count is clamped",
			topic: "Coffee", count: -3,
			want: GenerationInput{Topic: "Coffee", Tone: ToneProfessional, ImageStyle: ImageStyleIllustration, Count: MinSlideCount},
		},
		{name: "short topic", topic: "a", wantError: true},
		{name: "whitespace padded short topic", topic: "  ab   ", wantError: true},
		{name: "empty topic", topic: "", wantError: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewGenerationInput(tc.topic, tc.tone, tc.style, tc.count)
			if tc.wantError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, MsgTopicTooShort, vErr.Message)
				assert.Equal(t, "topic", vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClampSlideCountBounds(t *testing.T) {
	t.Parallel()

	for count := -20; count <= 30; count++ {
		got := ClampSlideCount(count)
		assert.GreaterOrEqual(t, got, MinSlideCount)
		assert.LessOrEqual(t, got, MaxSlideCount)
	}
}
