package lovdata

import (
	"fmt"
	"strings"

	"github.com/kommunelab/lovassistent/internal/pkg/errs"
)

// FormatLawIDs resolves canonical law identifiers (TYPE-YYYY-MM-DD-NNN,
// TYPE one of LOV/FOR) to the publisher's XML filenames. The sequence
// number is zero padded to 3 digits for laws and 4 for forskrifter.
func FormatLawIDs(lawIDs []string) (map[string]struct{}, error) {
	wanted := make(map[string]struct{}, len(lawIDs))
	for _, lawID := range lawIDs {
		parts := strings.Split(lawID, "-")
		if len(parts) < 4 {
			return nil, fmt.Errorf("%w: illegal law format: %s", errs.ErrIllegalFormat, lawID)
		}

		var name string
		switch parts[0] {
		case "LOV":
			name = "nl-"
		case "FOR":
			name = "sf-"
		default:
			return nil, fmt.Errorf("%w: unknown type (need LOV or FOR): %s", errs.ErrUnknownType, lawID)
		}

		name += parts[1] + parts[2] + parts[3]
		if len(parts) > 4 {
			width := 3
			if parts[0] == "FOR" {
				width = 4
			}
			name += "-" + zeroPad(parts[4], width)
		}
		wanted[name+".xml"] = struct{}{}
	}
	return wanted, nil
}

func zeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}
