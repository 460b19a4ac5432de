package errors

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Error codes.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeFetchFailed     = "FETCH_FAILED"
	CodeReportFailed    = "REPORT_GENERATION_FAILED"
	CodeAIUnavailable   = "AI_UNAVAILABLE"
	CodeAIUnauthorized  = "AI_UNAUTHORIZED"
	CodeExportNotReady  = "EXPORT_NOT_READY"
	CodeExportFailed    = "EXPORT_FAILED"
	CodeInvalidPipeline = "INVALID_PIPELINE_MOVE"
	CodeInternal        = "INTERNAL"
)

// DefaultLanguage is used when the caller expresses no preference.
var DefaultLanguage = language.Indonesian

var supported = []language.Tag{language.Indonesian, language.English}

var matcher = language.NewMatcher(supported)

var messages = map[string]struct{ id, en string }{
	CodeInvalidRequest:  {"Permintaan tidak valid.", "The request is invalid."},
	CodeNotFound:        {"Data tidak ditemukan.", "The requested data was not found."},
	CodeUnauthorized:    {"Akses ditolak.", "Access denied."},
	CodeFetchFailed:     {"Gagal memuat data. Silakan coba lagi.", "Failed to load data. Please try again."},
	CodeReportFailed:    {"Gagal membuat laporan. Silakan coba lagi.", "Failed to generate the report. Please try again."},
	CodeAIUnavailable:   {"Layanan AI sedang tidak dapat dihubungi. Silakan coba lagi.", "The AI service could not be reached. Please try again."},
	CodeAIUnauthorized:  {"Kunci API layanan AI tidak valid.", "The AI service API key is invalid."},
	CodeExportNotReady:  {"Ekspor belum siap untuk diunduh.", "The export is not ready for download."},
	CodeExportFailed:    {"Gagal mengekspor laporan.", "Failed to export the report."},
	CodeInvalidPipeline: {"Perpindahan pipeline tidak valid.", "The pipeline move is invalid."},
	CodeInternal:        {"Terjadi kesalahan tak terduga.", "An unexpected error occurred."},
}

var messageCatalog = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(DefaultLanguage))
	for code, m := range messages {
		_ = b.SetString(language.Indonesian, code, m.id)
		_ = b.SetString(language.English, code, m.en)
	}
	return b
}

// Localize returns the user-facing message for code in the given language.
// Unknown codes fall back to the INTERNAL message.
func Localize(code string, tag language.Tag) string {
	if _, ok := messages[code]; !ok {
		code = CodeInternal
	}
	p := message.NewPrinter(tag, message.Catalog(messageCatalog))
	return p.Sprintf(code)
}

// MatchLanguage picks a supported language from an Accept-Language header.
func MatchLanguage(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return DefaultLanguage
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return DefaultLanguage
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLanguage
	}
	return supported[index]
}
