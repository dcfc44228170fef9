// Package export derives CSV documents from action-item sets for download
// and link sharing.
package export

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meetscribe/meetscribe/pkg/models"
)

var header = []string{"Action", "Owner", "Deadline", "Priority", "Remarks", "Status"}

// CSV renders items in the order given. Every field is wrapped in double
// quotes; embedded quotes and newlines inside free-text fields are not
// escaped, matching the format consumers of these files already parse.
func CSV(items []*models.ActionItem) string {
	rows := make([]string, 0, len(items)+1)
	rows = append(rows, quoteRow(header))

	for _, item := range items {
		status := "Pending"
		if item.Completed {
			status = "Completed"
		}
		rows = append(rows, quoteRow([]string{
			item.Action,
			item.Owner,
			item.Deadline,
			string(item.Priority),
			item.Remarks,
			status,
		}))
	}

	return strings.Join(rows, "\n")
}

// Filename names the primary export artifact by date.
func Filename(now time.Time) string {
	return "action-items-" + now.Format("2006-01-02") + ".csv"
}

// ShareFilename names a share-triggered export by the analysis id's first
// eight characters.
func ShareFilename(analysisID uuid.UUID) string {
	return "action-items-" + analysisID.String()[:8] + ".csv"
}

func quoteRow(fields []string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + f + `"`
	}
	return strings.Join(quoted, ",")
}
