package backendsvc

import (
	"github.com/trezcool/hydrofarm/core"
	"github.com/trezcool/hydrofarm/core/session"
)

// NewFromConfig wires a Client to the configuration and the session context.
// Any 401 on an authenticated request clears the session.
func NewFromConfig(conf *core.Config, sess *session.Context, logger core.Logger) (*Client, error) {
	verbs, err := NewVerbStrategy(conf)
	if err != nil {
		return nil, err
	}
	return NewClient(Options{
		BaseURL:     conf.Backend.BaseURL,
		Timeout:     conf.Backend.Timeout,
		LongTimeout: conf.Backend.LongTimeout,
		Verbs:       verbs,
		Tokens:      sess,
		OnUnauthorized: func() {
			if err := sess.Clear(); err != nil && logger != nil {
				logger.Error("clearing session after 401", err)
			}
		},
		Logger: logger,
	}), nil
}
