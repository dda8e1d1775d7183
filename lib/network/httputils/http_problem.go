package httputils

import (
	"net/http"
	"strconv"

	"github.com/tokenvote/tokenvote/lib/errors"
)

const (
	ProblemTypeBase  = "https://tokenvote.dev/problems"
	DefaultNamespace = "about:blank"
)

// Problem is a RFC 7807 problem document.
type Problem struct {
	Type     string                 `json:"type"`
	Title    string                 `json:"title"`
	Status   int                    `json:"status,omitempty"`
	Detail   string                 `json:"detail,omitempty"`
	Instance string                 `json:"instance,omitempty"`
	Extras   map[string]interface{} `json:"extras,omitempty"`
}

func NewProblem(problemType, title string) Problem {
	return Problem{Type: problemType, Title: title}
}

func NewStatusProblem(status int) Problem {
	return Problem{
		Type:   DefaultNamespace,
		Title:  http.StatusText(status),
		Status: status,
	}
}

func NewDetailedStatusProblem(status int, detail string) Problem {
	p := NewStatusProblem(status)
	p.Detail = detail
	return p
}

func NewErrorProblem(err error, status int) Problem {
	p := Problem{Status: status}
	if e, ok := err.(*errors.Error); ok {
		p.Type = ProblemTypeBase + "/error-" + strconv.FormatUint(uint64(e.Code), 10)
		p.Title = e.Message
		if len(e.Data) > 0 {
			p.Extras = e.Data
		}
	} else {
		p.Type = DefaultNamespace
		p.Title = err.Error()
	}
	return p
}

func (p Problem) SetInstance(instance string) Problem {
	p.Instance = instance
	return p
}
