package myhttp

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	formcodec "github.com/go-playground/form/v4"

	"github.com/MarcGrol/catalogshop/lib/myerrors"
)

var formDecoder = formcodec.NewDecoder()

// DecodeQuery fills dst from the query-string using its form-tags. Fields absent from the query keep their value.
func DecodeQuery(r *http.Request, dst interface{}) error {
	err := formDecoder.Decode(dst, r.URL.Query())
	if err != nil {
		return myerrors.NewInvalidInputErrorf("error decoding query: %s", err)
	}
	return nil
}

// DecodeBody fills dst from a json body or from a html-form post, depending on the content-type.
func DecodeBody(r *http.Request, dst interface{}) error {
	mediaType := ""
	contentType := r.Header.Get("Content-Type")
	if contentType != "" {
		var err error
		mediaType, _, err = mime.ParseMediaType(contentType)
		if err != nil {
			return myerrors.NewInvalidInputErrorf("invalid content-type '%s': %s", contentType, err)
		}
	}

	switch mediaType {
	case "application/x-www-form-urlencoded":
		err := r.ParseForm()
		if err != nil {
			return myerrors.NewInvalidInputErrorf("error parsing form: %s", err)
		}
		err = formDecoder.Decode(dst, r.PostForm)
		if err != nil {
			return myerrors.NewInvalidInputErrorf("error decoding form: %s", err)
		}
		return nil

	case "application/json", "":
		err := json.NewDecoder(r.Body).Decode(dst)
		if err != nil {
			return myerrors.NewInvalidInputErrorf("error decoding json: %s", err)
		}
		return nil

	default:
		return myerrors.NewUnsupportedMediaTypeError(fmt.Errorf("unsupported content-type '%s'", mediaType))
	}
}
