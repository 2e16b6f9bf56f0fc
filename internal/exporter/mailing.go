package exporter

import (
	"fmt"
	"strings"
	"time"

	"churnmail/internal/config"
	"churnmail/pkg/contracts/domain"
)

// Fixed text of the pre-filled e-mail. The body names the generic download
// since the operator attaches the file manually.
const (
	mailtoSubject = "Mailing de Churn Processado"
	mailtoBody    = "Prezados,\n\nSegue em anexo o arquivo de mailing de churn processado. Por favor, adicione o arquivo 'planilha_churn_processada.xlsx' que você baixou.\n\nAtenciosamente,"
)

// Filename returns the dated artifact name, e.g. "Mailing RAF 25.08.2026.xlsx".
func Filename(ts time.Time, format domain.ArtifactFormat) string {
	return fmt.Sprintf("%s.%s", ts.Format(config.OutputFilenamePattern), format)
}

// ContentType returns the MIME type downloads of the given format are
// served with.
func ContentType(format domain.ArtifactFormat) string {
	if format == domain.ArtifactFormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// MailtoLink returns the mailto URL that opens the operator's mail client
// with subject and body pre-filled.
func MailtoLink() string {
	return "mailto:?subject=" + escapeQuery(mailtoSubject) + "&body=" + escapeQuery(mailtoBody)
}

// escapeQuery percent-encodes s for a mailto query. Spaces must encode as
// %20, never "+", and newlines as %0A, or mail clients mangle the body;
// unreserved characters and the slash pass through.
func escapeQuery(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9':
			b.WriteByte(c)
		case c == '-' || c == '_' || c == '.' || c == '~' || c == '/':
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
