package intake

import (
	"errors"
	"io"
	"net/http"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

const maxBodyBytes = 16 << 10

var errTrailingData = errors.New("body must contain a single JSON object")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// dígitos, +, parênteses, espaços e hífen
	_ = v.RegisterValidation("phonechars", func(fl validator.FieldLevel) bool {
		for _, r := range fl.Field().String() {
			switch {
			case r >= '0' && r <= '9':
			case r == '+' || r == '(' || r == ')' || r == '-' || unicode.IsSpace(r):
			default:
				return false
			}
		}
		return true
	})
	return v
}

// readJSON decodifica um único objeto JSON, recusando campos desconhecidos.
// Números em campos `any` chegam como json.Number.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	dec.UseNumber()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func writeError(w http.ResponseWriter, status int, message string) {
	type envelope struct {
		Error string `json:"error"`
	}
	_ = writeJSON(w, status, envelope{Error: message})
}

func invalidPayload(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "Invalid payload")
}

func tooManyRequests(w http.ResponseWriter) {
	writeError(w, http.StatusTooManyRequests, "Too many requests")
}

func serverError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, "Server error")
}
