package census

// The raw variable catalog for the ACS 5-year tables. Estimates are pulled
// in one request; the groups below are summed into numerators before the
// share derivation.

var (
	// population
	varTotalPop = "B01003_001E"

	// sex
	varSexTotal = "B01001_001E"
	varMale     = "B01001_002E"
	varFemale   = "B01001_026E"

	// hispanic origin
	varHispTotal = "B03003_001E"
	varHispanic  = "B03003_003E"

	// race
	varRaceTotal = "B02001_001E"
	varWhite     = "B02001_002E"
	varBlack     = "B02001_003E"
	varNative    = "B02001_004E"
	varAsian     = "B02001_005E"
	varNHPI      = "B02001_006E"
	varOtherRace = "B02001_007E"
	varTwoPlus   = "B02001_008E"

	// educational attainment, population 25 and over
	varEdTotal = "B15002_001E"

	// males below a high-school diploma
	edMaleBelowHS = []string{
		"B15002_003E", "B15002_004E", "B15002_005E", "B15002_006E",
		"B15002_007E", "B15002_008E", "B15002_009E", "B15002_010E",
	}

	// females below a high-school diploma
	edFemaleBelowHS = []string{
		"B15002_020E", "B15002_021E", "B15002_022E", "B15002_023E",
		"B15002_024E", "B15002_025E", "B15002_026E", "B15002_027E",
	}

	// poverty status
	varPovTotal = "B17001_001E"
	varPovBelow = "B17001_002E"

	// income and housing
	varHouseholdIncome = "B19013_001E"
	varPerCapitaIncome = "B19301_001E"
	varHouseValue      = "B25077_001E"
	varGrossRent       = "B25064_001E"
	varHousingUnits    = "B25001_001E"
	varOccTotal        = "B25002_001E"
	varOccOccupied     = "B25002_002E"
	varOccVacant       = "B25002_003E"
	varTenureTotal     = "B25003_001E"
	varTenureOwner     = "B25003_002E"
)

// allVariables is the full request list, in request order.
func allVariables() []string {
	vars := []string{
		varTotalPop,
		varSexTotal, varMale, varFemale,
		varHispTotal, varHispanic,
		varRaceTotal, varWhite, varBlack, varNative, varAsian,
		varNHPI, varOtherRace, varTwoPlus,
		varEdTotal,
	}

	vars = append(vars, edMaleBelowHS...)
	vars = append(vars, edFemaleBelowHS...)

	return append(vars,
		varPovTotal, varPovBelow,
		varHouseholdIncome, varPerCapitaIncome,
		varHouseValue, varGrossRent, varHousingUnits,
		varOccTotal, varOccOccupied, varOccVacant,
		varTenureTotal, varTenureOwner,
	)
}
