package util

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
)

// HashTable creates an MD5 checksum over every cell of the table, used to
// recognise re-uploads of the same spreadsheet.
func HashTable(t model.Table) string {
	h := md5.New()
	h.Write([]byte(strings.Join(t.Columns, "|")))
	for _, r := range t.Records {
		builder := strings.Builder{}
		builder.WriteString("\n")
		builder.WriteString(r.NodeID)
		builder.WriteString("|")
		builder.WriteString(r.ScoreBefore)
		builder.WriteString("|")
		builder.WriteString(r.ScoreAfter)
		builder.WriteString("|")
		builder.WriteString(r.Sector)
		builder.WriteString("|")
		builder.WriteString(r.City)
		builder.WriteString("|")
		builder.WriteString(r.Reason)
		builder.WriteString("|")
		builder.WriteString(r.Responsible)
		builder.WriteString("|")
		builder.WriteString(r.Month)
		h.Write([]byte(builder.String()))
	}
	return hex.EncodeToString(h.Sum(nil))
}
