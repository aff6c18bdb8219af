package nutrition

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/alchemorsel/nutrition/internal/domain/dietary"
)

const analysisKeyPrefix = "dietary:analysis:"

// Fingerprint identifies everything an analysis result depends on. Names are
// kept verbatim, units are normalized the way the gram conversion reads them
// and notes are ignored.
func Fingerprint(lines []dietary.IngredientLine, isPescatarian bool) string {
	h := sha256.New()
	for _, l := range lines {
		fmt.Fprintf(h, "%q|%s|%q\n",
			l.Name,
			strconv.FormatFloat(l.Amount, 'g', -1, 64),
			strings.ToLower(strings.TrimSpace(l.Unit)),
		)
	}
	fmt.Fprintf(h, "pescatarian=%t", isPescatarian)
	return hex.EncodeToString(h.Sum(nil))
}

// AnalysisCacheKey returns the cache key for a fingerprint
func AnalysisCacheKey(fingerprint string) string {
	return analysisKeyPrefix + fingerprint
}
