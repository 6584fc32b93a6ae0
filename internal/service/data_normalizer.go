package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/datasource"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// DataNormalizer normalizes data from various sources to the internal format
type DataNormalizer struct {
	teamNameMap map[string]string // Maps provider team names to canonical names
	logger      *log.Logger
}

// NewDataNormalizer creates a new data normalizer
func NewDataNormalizer(logger *log.Logger) *DataNormalizer {
	return &DataNormalizer{
		teamNameMap: buildTeamNameMap(),
		logger:      logger,
	}
}

// NormalizeGame converts GameData from any source to the internal GameRecord
// model. Team resolution happens upstream; the caller passes resolved IDs.
func (n *DataNormalizer) NormalizeGame(src *datasource.GameData, homeID, awayID uuid.UUID) (*models.GameRecord, error) {
	if src == nil {
		return nil, fmt.Errorf("source game is nil")
	}

	game := &models.GameRecord{
		ID:          uuid.New(),
		Season:      src.Season,
		Week:        src.Week,
		HomeTeamID:  homeID,
		AwayTeamID:  awayID,
		NeutralSite: src.NeutralSite,
		Completed:   src.Completed,
		KickoffAt:   src.KickoffTime.UTC(),
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if src.HomeScore != nil {
		game.HomeScore = *src.HomeScore
	}
	if src.AwayScore != nil {
		game.AwayScore = *src.AwayScore
	}

	// Providers occasionally flag unscored games as completed.
	if src.Completed && (src.HomeScore == nil || src.AwayScore == nil) {
		game.Completed = false
	}

	return game, nil
}

// NormalizeBoxScore converts BoxScoreData from any source to the internal
// BoxScoreStats model
func (n *DataNormalizer) NormalizeBoxScore(src *datasource.BoxScoreData, gameID, teamID uuid.UUID) (*models.BoxScoreStats, error) {
	if src == nil {
		return nil, fmt.Errorf("source box score is nil")
	}

	return &models.BoxScoreStats{
		GameID:               gameID,
		TeamID:               teamID,
		Points:               src.Points,
		TotalYards:           src.TotalYards,
		PassingYards:         src.PassingYards,
		RushingYards:         src.RushingYards,
		Turnovers:            src.Turnovers,
		Takeaways:            src.Takeaways,
		Sacks:                src.Sacks,
		FieldGoalsMade:       src.FieldGoalsMade,
		FieldGoalsAttempted:  src.FieldGoalsAttempted,
		ThirdDownConversions: src.ThirdDownConversions,
		ThirdDownAttempts:    src.ThirdDownAttempts,
		RedZoneScores:        src.RedZoneScores,
		RedZoneAttempts:      src.RedZoneAttempts,
		CreatedAt:            time.Now().UTC(),
	}, nil
}

// NormalizeTeam converts TeamData from any source to the internal Team model
func (n *DataNormalizer) NormalizeTeam(src *datasource.TeamData) (*models.Team, error) {
	if src == nil {
		return nil, fmt.Errorf("source team is nil")
	}

	return &models.Team{
		ID:             uuid.New(),
		Name:           n.NormalizeTeamName(src.Name),
		Abbreviation:   strings.ToUpper(strings.TrimSpace(src.Abbreviation)),
		Conference:     strings.TrimSpace(src.Conference),
		Classification: n.normalizeClassification(src.Classification),
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// NormalizeTeamName converts provider-specific team names to canonical format
func (n *DataNormalizer) NormalizeTeamName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}

	if canonical, ok := n.teamNameMap[strings.ToUpper(trimmed)]; ok {
		return canonical
	}

	return trimmed
}

// normalizeClassification maps provider division labels onto the two tracked
// classifications. Unknown labels default to FCS so thin-schedule teams never
// masquerade as full members.
func (n *DataNormalizer) normalizeClassification(classification string) models.TeamClassification {
	switch strings.ToLower(strings.TrimSpace(classification)) {
	case "fbs", "i-a", "ia":
		return models.ClassificationFBS
	case "fcs", "i-aa", "iaa":
		return models.ClassificationFCS
	default:
		if n.logger != nil && classification != "" {
			n.logger.Printf("Unknown classification %q, treating as FCS", classification)
		}
		return models.ClassificationFCS
	}
}

// NormalizeKickoff ensures kickoff times are in UTC
func (n *DataNormalizer) NormalizeKickoff(t time.Time) time.Time {
	return t.UTC()
}

// buildTeamNameMap returns mapping of provider name variations to canonical names
func buildTeamNameMap() map[string]string {
	return map[string]string{
		"OHIO ST":            "Ohio State",
		"OHIO STATE":         "Ohio State",
		"MICHIGAN ST":        "Michigan State",
		"MICHIGAN STATE":     "Michigan State",
		"PENN ST":            "Penn State",
		"PENN STATE":         "Penn State",
		"FLORIDA ST":         "Florida State",
		"FLORIDA STATE":      "Florida State",
		"OKLAHOMA ST":        "Oklahoma State",
		"OKLAHOMA STATE":     "Oklahoma State",
		"KANSAS ST":          "Kansas State",
		"KANSAS STATE":       "Kansas State",
		"IOWA ST":            "Iowa State",
		"IOWA STATE":         "Iowa State",
		"MISSISSIPPI ST":     "Mississippi State",
		"MISSISSIPPI STATE":  "Mississippi State",
		"OLE MISS":           "Mississippi",
		"MISSISSIPPI":        "Mississippi",
		"NC STATE":           "NC State",
		"NORTH CAROLINA ST":  "NC State",
		"N.C. STATE":         "NC State",
		"USC":                "Southern California",
		"SOUTHERN CAL":       "Southern California",
		"SOUTHERN CALIFORNIA": "Southern California",
		"TCU":                "TCU",
		"TEXAS CHRISTIAN":    "TCU",
		"SMU":                "SMU",
		"SOUTHERN METHODIST": "SMU",
		"BYU":                "BYU",
		"BRIGHAM YOUNG":      "BYU",
		"UCF":                "UCF",
		"CENTRAL FLORIDA":    "UCF",
		"LSU":                "LSU",
		"LOUISIANA STATE":    "LSU",
		"MIAMI":              "Miami",
		"MIAMI (FL)":         "Miami",
		"MIAMI FL":           "Miami",
		"MIAMI (OH)":         "Miami (OH)",
		"MIAMI OH":           "Miami (OH)",
		"PITT":               "Pittsburgh",
		"PITTSBURGH":         "Pittsburgh",
		"UL MONROE":          "Louisiana-Monroe",
		"LOUISIANA-MONROE":   "Louisiana-Monroe",
		"ULM":                "Louisiana-Monroe",
		"LOUISIANA":          "Louisiana",
		"UL LAFAYETTE":       "Louisiana",
		"HAWAII":             "Hawai'i",
		"HAWAI'I":            "Hawai'i",
		"SAN JOSE ST":        "San José State",
		"SAN JOSE STATE":     "San José State",
		"SAN JOSÉ STATE":     "San José State",
		"UTSA":               "UT San Antonio",
		"UT SAN ANTONIO":     "UT San Antonio",
		"UMASS":              "Massachusetts",
		"MASSACHUSETTS":      "Massachusetts",
		"UCONN":              "Connecticut",
		"CONNECTICUT":        "Connecticut",
		"APP STATE":          "Appalachian State",
		"APPALACHIAN ST":     "Appalachian State",
		"APPALACHIAN STATE":  "Appalachian State",
	}
}
