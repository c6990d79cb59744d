package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/phrazzld/carousel-studio/internal/domain"
)

// FlexibleString accepts a JSON string or number. Any other JSON value,
// including null, decodes to "".
type FlexibleString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexibleString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*s = ""
		return nil
	}

	switch {
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexibleString(v)
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		*s = FlexibleString(data)
	default:
		*s = ""
	}
	return nil
}

// FlexibleCount accepts a JSON number, a numeric string or a boolean. Values
// that are not numeric decode to 0, which selects the default slide count.
type FlexibleCount float64

// UnmarshalJSON implements json.Unmarshaler.
func (c *FlexibleCount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*c = 0
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			*c = FlexibleCount(f)
		}
	case 't':
		*c = 1
	case 'f', 'n', '[', '{':
	default:
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*c = FlexibleCount(f)
	}
	return nil
}

// Int converts the count to a slide count. Zero and NaN yield 0, leaving the
// default to the domain. Anything else is clamped to the supported range and
// rounded up.
func (c FlexibleCount) Int() int {
	f := float64(c)
	if f == 0 || math.IsNaN(f) {
		return 0
	}
	f = math.Max(domain.MinSlideCount, math.Min(domain.MaxSlideCount, f))
	return int(math.Ceil(f))
}

// GenerateRequest is the body of POST /api/generate.
type GenerateRequest struct {
	Topic      FlexibleString `json:"topic"`
	Tone       FlexibleString `json:"tone"`
	ImageStyle FlexibleString `json:"imageStyle"`
	Count      FlexibleCount  `json:"count"`
}

// Input sanitizes the request into a domain.GenerationInput.
func (r GenerateRequest) Input() (domain.GenerationInput, error) {
	return domain.NewGenerationInput(
		string(r.Topic),
		strings.TrimSpace(string(r.Tone)),
		strings.TrimSpace(string(r.ImageStyle)),
		r.Count.Int(),
	)
}

// GenerateResponse is returned when a job has been accepted.
type GenerateResponse struct {
	JobID    string           `json:"jobId"`
	Status   domain.JobStatus `json:"status"`
	Progress int              `json:"progress"`
}

// JobStatusResponse describes a job to polling clients. Result is null until
// the job completes and Error is null unless it failed.
type JobStatusResponse struct {
	JobID    string                   `json:"jobId"`
	Status   domain.JobStatus         `json:"status"`
	Progress int                      `json:"progress"`
	Error    *string                  `json:"error"`
	Result   *domain.GenerationResult `json:"result"`
}

func newJobStatusResponse(job *domain.Job) JobStatusResponse {
	resp := JobStatusResponse{
		JobID:    job.ID,
		Status:   job.Status,
		Progress: job.Progress,
		Error:    job.Error,
	}
	if job.Status == domain.JobStatusCompleted {
		resp.Result = job.Result
	}
	return resp
}
