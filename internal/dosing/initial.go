package dosing

import (
	"fmt"

	"dripcalc/internal/models"
)

// CautionThreshold is the initial BG above which orders need MD review.
const CautionThreshold = 500.0

// InitialDose computes the starting bolus and infusion rate: both are
// initialBG/100 rounded to the nearest 0.5 unit.
func InitialDose(in models.InitialReading) (models.InitialDose, error) {
	if err := in.Validate(); err != nil {
		return models.InitialDose{}, err
	}

	dose := RoundToHalf(in.InitialBG / 100)
	out := models.InitialDose{
		InitialBG: in.InitialBG,
		Bolus:     dose,
		Rate:      dose,
	}
	if in.InitialBG > CautionThreshold {
		out.Caution = fmt.Sprintf("Initial orders should be reviewed with MD for BG > %s mg/dL.", num(CautionThreshold))
	}
	return out, nil
}
