package api

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"snatch/internal/media"
)

var validate = validator.New()

// videoQuery carries the validated query parameters of a video request.
type videoQuery struct {
	URL     string `json:"url" validate:"required,url"`
	Format  string `json:"format" validate:"omitempty,oneof=mp4 mkv"`
	Quality string `json:"quality" validate:"omitempty,oneof=1080p 720p 480p 360p"`
}

// audioQuery carries the validated query parameters of an audio request.
type audioQuery struct {
	URL     string `json:"url" validate:"required,url"`
	Format  string `json:"format" validate:"omitempty,oneof=mp3 m4a flac opus"`
	Quality string `json:"quality" validate:"omitempty,oneof=0 5 9"`
}

var tagMessages = map[string]string{
	"required": "The field '%s' is required.",
	"url":      "The field '%s' must be a valid URL.",
	"oneof":    "The field '%s' must be one of %s.",
}

func parseMessage(jsonTag string, e validator.FieldError) string {
	if msg, ok := tagMessages[e.Tag()]; ok {
		if strings.Count(msg, "%s") == 2 {
			return fmt.Sprintf(msg, jsonTag, e.Param())
		}
		return fmt.Sprintf(msg, jsonTag)
	}
	return fmt.Sprintf("Field '%s' is invalid: %s", jsonTag, e.Tag())
}

// validateStruct validates a struct pointer and returns a map of JSON
// field names to friendly error messages. An empty map means valid.
func validateStruct(s any) map[string]string {
	fields := make(map[string]string)

	err := validate.Struct(s)
	if err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			structType := reflect.TypeOf(s).Elem()
			for _, e := range validationErrs {
				field, _ := structType.FieldByName(e.StructField())
				jsonTag := field.Tag.Get("json")
				if jsonTag == "" {
					jsonTag = e.StructField()
				} else {
					jsonTag = strings.Split(jsonTag, ",")[0]
				}
				fields[jsonTag] = parseMessage(jsonTag, e)
			}
		} else {
			fields["request"] = err.Error()
		}
	}
	return fields
}

// parseExtractQuery validates request parameters for the given kind and
// applies format/quality defaults. Quality selectors only apply to
// YouTube video; other sites have no selectable video quality.
func parseExtractQuery(kind media.Kind, site string, values url.Values) (urlParam, format, quality string, fields map[string]string) {
	rawURL := strings.TrimSpace(values.Get("url"))
	format = strings.ToLower(strings.TrimSpace(values.Get("format")))
	quality = strings.TrimSpace(values.Get("quality"))

	if kind == media.KindVideo {
		q := videoQuery{URL: rawURL, Format: format, Quality: quality}
		if fields = validateStruct(&q); len(fields) > 0 {
			return "", "", "", fields
		}
		if format == "" {
			format = media.DefaultVideoFormat
		}
		if !strings.EqualFold(site, "youtube") {
			quality = ""
		} else if quality == "" {
			quality = media.DefaultVideoQuality
		}
		return rawURL, format, quality, nil
	}

	q := audioQuery{URL: rawURL, Format: format, Quality: quality}
	if fields = validateStruct(&q); len(fields) > 0 {
		return "", "", "", fields
	}
	if format == "" {
		format = media.DefaultAudioFormat
	}
	if quality == "" {
		quality = media.DefaultAudioQuality
	}
	return rawURL, format, quality, nil
}
