package middleware

import "net/http"

// Response writer that remembers status and size of the response
type logWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func newLogWriter(w http.ResponseWriter) *logWriter {
	// Handler that never calls WriteHeader answers 200
	return &logWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.wroteHeader = true
	size, err := w.ResponseWriter.Write(p)
	w.size += size
	return size, err
}

func (w *logWriter) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *logWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
