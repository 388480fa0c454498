package backendsvc

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/hydrofarm/core"
)

// VerbStrategy decides which HTTP verb actually goes on the wire for a semantic verb.
type VerbStrategy interface {
	Prepare(method string, body interface{}) (wireMethod string, header http.Header, wireBody interface{}, err error)
}

// DirectVerbs sends every verb as is.
type DirectVerbs struct{}

func (DirectVerbs) Prepare(method string, body interface{}) (string, http.Header, interface{}, error) {
	return method, nil, body, nil
}

// MethodOverride tunnels the configured verbs through POST, for intermediaries that only let
// GET and POST through. The semantic verb travels both in the JSON payload and in a header.
type MethodOverride struct {
	Field   string
	Header  string
	Methods []string
}

// NewMethodOverride fills blank settings with `_method`, X-HTTP-Method-Override and PUT, DELETE.
func NewMethodOverride(field, header string, methods []string) MethodOverride {
	if field == "" {
		field = "_method"
	}
	if header == "" {
		header = "X-HTTP-Method-Override"
	}
	if len(methods) == 0 {
		methods = []string{http.MethodPut, http.MethodDelete}
	}
	return MethodOverride{Field: field, Header: header, Methods: methods}
}

func (mo MethodOverride) overrides(method string) bool {
	for _, m := range mo.Methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func (mo MethodOverride) Prepare(method string, body interface{}) (string, http.Header, interface{}, error) {
	if !mo.overrides(method) {
		return method, nil, body, nil
	}

	payload := make(map[string]interface{})
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return "", nil, nil, errors.Wrap(err, "encoding body for method override")
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return "", nil, nil, errors.Wrap(err, "method override needs a JSON object body")
		}
		if payload == nil { // body encoded as null
			payload = make(map[string]interface{})
		}
	}
	if mo.Field != "" {
		payload[mo.Field] = method
	}

	header := make(http.Header)
	if mo.Header != "" {
		header.Set(mo.Header, method)
	}
	return http.MethodPost, header, payload, nil
}

// NewVerbStrategy builds the strategy selected by `backend.verbs`.
func NewVerbStrategy(conf *core.Config) (VerbStrategy, error) {
	switch conf.Backend.Verbs {
	case "", core.VerbsDirect:
		return DirectVerbs{}, nil
	case core.VerbsOverride:
		return NewMethodOverride(conf.Backend.OverrideField, conf.Backend.OverrideHeader, conf.Backend.OverrideMethods), nil
	}
	return nil, errors.Errorf("unknown backend.verbs %q", conf.Backend.Verbs)
}
