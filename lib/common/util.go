package common

import (
	"os"
	"strings"

	uuid "github.com/satori/go.uuid"

	"github.com/tokenvote/tokenvote/lib/errors"
)

func GetUniqueIDFromUUID() string {
	return uuid.Must(uuid.NewV1(), nil).String()
}

func GetENVValue(key, defaultValue string) (v string) {
	var found bool
	if v, found = os.LookupEnv(key); !found {
		return defaultValue
	}

	return
}

func ParseBoolQueryString(s string) (v bool, err error) {
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		v = true
	case "0", "false", "no":
		v = false
	default:
		err = errors.ErrorInvalidQueryString.Clone().SetData("value", s)
	}

	return
}

type Serializable interface {
	Serialize() ([]byte, error)
}

func InArray(ss []string, s string) bool {
	for _, a := range ss {
		if strings.EqualFold(a, s) {
			return true
		}
	}
	return false
}
