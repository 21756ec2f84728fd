package logging

import (
	"github.com/sirupsen/logrus"

	"github.com/TonnyWong1052/shellgen/internal/security"
)

// redactHook masks credentials in the message and string fields of every
// entry before it is formatted.
type redactHook struct {
	redactor *security.Redactor
}

func newRedactHook(secrets []string) *redactHook {
	return &redactHook{redactor: security.NewRedactor(secrets...)}
}

func (h *redactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *redactHook) Fire(entry *logrus.Entry) error {
	entry.Message = h.redactor.Redact(entry.Message)
	for key, value := range entry.Data {
		switch v := value.(type) {
		case string:
			entry.Data[key] = h.redactor.Redact(v)
		case error:
			entry.Data[key] = h.redactor.Redact(v.Error())
		}
	}
	return nil
}
