package service

import (
	"errors"
	"math"
	"net/url"
	"path"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var youtubeURLRegexp = regexp.MustCompile(`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`)

var RoomNameRule = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, 64),
}

// bcrypt ignores input past 72 bytes
var SecretRule = []validation.Rule{
	validation.Length(0, 72),
}

var DisplayNameRule = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, 32),
}

var ParticipantIdRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 64),
	is.PrintableASCII,
}

var ActionKindRule = []validation.Rule{
	validation.Required,
	validation.In("play", "pause", "seek", "heartbeat", "load"),
}

var PositionRule = []validation.Rule{
	validation.By(finite),
	validation.Min(0.0),
}

var MediaKindRule = []validation.Rule{
	validation.In("", "youtube", "embedded-stream", "local", "uploaded-file"),
}

var YoutubeURLRule = []validation.Rule{
	validation.Required,
	validation.Match(youtubeURLRegexp),
}

var LocalMediaRule = []validation.Rule{
	validation.Required,
	validation.By(urlOrAbsolutePath),
}

func finite(value any) error {
	f, _ := value.(float64)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("must be a finite number")
	}

	return nil
}

func urlOrAbsolutePath(value any) error {
	s, _ := value.(string)
	if path.IsAbs(s) {
		return nil
	}

	u, err := url.ParseRequestURI(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("must be an absolute url or path")
	}

	return nil
}
