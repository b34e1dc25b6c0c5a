package extract

import "errors"

// previewLimit bounds every raw-output excerpt carried inside an error, so
// messages stay displayable no matter what a model returns.
const previewLimit = 200

// ErrNoTextFound means capture/recognition produced no usable text.
var ErrNoTextFound = errors.New("no text found in input")

// ErrEmptyModelOutput means the model replied with a bare "{}". Some
// reasoning-oriented models do this consistently; the fix is switching
// models, not retrying, so it is kept distinct from MalformedResponseError.
var ErrEmptyModelOutput = errors.New("model returned an empty object")

// ErrBusy is returned when a pipeline run is triggered while another is
// still in flight. Triggers are dropped, never queued.
var ErrBusy = errors.New("extraction already in progress")

// MalformedResponseError reports a structural decode failure of the
// model's reply.
type MalformedResponseError struct {
	Detail  string
	Preview string
}

func (e *MalformedResponseError) Error() string {
	return "malformed model response: " + e.Detail + " (got: " + e.Preview + ")"
}

// MissingTitleError reports a decodable reply without the required title.
type MissingTitleError struct {
	Preview string
}

func (e *MissingTitleError) Error() string {
	return "model response has no title (got: " + e.Preview + ")"
}

// InvalidDateError reports an absent or unparseable date field.
type InvalidDateError struct {
	Received string
	Preview  string
}

func (e *InvalidDateError) Error() string {
	if e.Received == "" {
		return "model response has no date (got: " + e.Preview + ")"
	}
	return "model response date " + e.Received + " is not YYYY-MM-DD (got: " + e.Preview + ")"
}

// preview returns at most previewLimit bytes of s.
func preview(s string) string {
	if len(s) > previewLimit {
		return s[:previewLimit]
	}
	return s
}
