package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cppla/schoolsite/utils"
)

const (
	// MethodOverrideField is the form field naming the intended method.
	MethodOverrideField = "_method"
	// MethodOverrideHeader is the header alternative to MethodOverrideField.
	MethodOverrideHeader = "X-HTTP-Method-Override"
	// MultipartMemory is held in memory per multipart body; the rest spills to temp files.
	MultipartMemory = 8 << 20
)

var overridable = map[string]bool{
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// MethodOverride lets HTML forms reach PUT, PATCH and DELETE routes by posting
// with a _method field or the X-HTTP-Method-Override header. It wraps the
// router because gin matches the route before any middleware runs.
// Bodies over maxBody bytes are refused with 413; zero disables the cap.
func MethodOverride(next http.Handler, maxBody int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if maxBody > 0 && r.Body != nil {
			if r.ContentLength > maxBody {
				tooLarge(w)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBody)
		}
		if r.Method == http.MethodPost {
			m, err := overrideMethod(r)
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				tooLarge(w)
				return
			}
			if overridable[m] {
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func overrideMethod(r *http.Request) (string, error) {
	if h := r.Header.Get(MethodOverrideHeader); h != "" {
		return strings.ToUpper(strings.TrimSpace(h)), nil
	}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(MultipartMemory); err != nil {
			return "", err
		}
	case strings.HasPrefix(ct, "application/x-www-form-urlencoded"):
		if err := r.ParseForm(); err != nil {
			return "", err
		}
	default:
		return "", nil
	}
	return strings.ToUpper(strings.TrimSpace(r.PostFormValue(MethodOverrideField))), nil
}

func tooLarge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	_ = json.NewEncoder(w).Encode(utils.JSONResponse{Code: 41300, Message: "request body too large"})
}
