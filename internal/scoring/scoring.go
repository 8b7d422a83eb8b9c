// Package scoring maps an achievement classification to a point value using
// fixed tables. It is a pure function of the classification: no persistence,
// no side effects.
//
// Dispatch is two-level: the achievement type narrows the valid category
// set, the category selects the table. Combinations outside every table
// score zero instead of failing; callers that want to treat that as a
// problem can inspect the second return value of Score.
package scoring

import "strings"

// Type is the four-way achievement partition.
type Type string

const (
	TypeStudentResult       Type = "student_result"
	TypeTeacherResult       Type = "teacher_result"
	TypeSocialActivity      Type = "social_activity"
	TypeEducationalActivity Type = "educational_activity"
)

// Category selects the scoring table within a type.
type Category string

const (
	// competitive placement, scored by level and place
	CategoryOlympiad                Category = "olympiad"
	CategoryCompetition             Category = "competition"
	CategoryProfessionalCompetition Category = "professional_competition"

	// social activity, scored by level only
	CategorySocialEvents Category = "social_events"
	CategoryVolunteering Category = "volunteering"

	// educational activity sub-rules
	CategoryClassroomManagement   Category = "classroom_management"
	CategoryParentEngagement      Category = "parent_engagement"
	CategorySpecialistCooperation Category = "specialist_cooperation"
)

// Level of the event an achievement was earned at.
type Level string

const (
	LevelCity          Level = "city"
	LevelRegional      Level = "regional"
	LevelNational      Level = "national"
	LevelInternational Level = "international"
)

// Place taken at a competitive event. PlaceCertificate covers honourable
// mentions and participation certificates.
type Place string

const (
	PlaceFirst       Place = "1"
	PlaceSecond      Place = "2"
	PlaceThird       Place = "3"
	PlaceCertificate Place = "certificate"
)

// ExperienceBracket groups years of classroom-management experience.
type ExperienceBracket string

const (
	ExperienceUpToOne   ExperienceBracket = "0-1"
	ExperienceUpToTwo   ExperienceBracket = "1-2"
	ExperienceUpToThree ExperienceBracket = "2-3"
	ExperienceThreePlus ExperienceBracket = "3+"
)

// ParticipationBracket groups parent-engagement participation percentages.
type ParticipationBracket string

const (
	ParticipationUpTo40 ParticipationBracket = "40"
	ParticipationUpTo70 ParticipationBracket = "70"
	ParticipationUpTo90 ParticipationBracket = "90"
)

// Classification is the tuple that determines an achievement's score.
// Exactly one of the place, experience or participation dimensions is
// meaningful for any given category; the others stay empty.
type Classification struct {
	Type          Type                 `json:"type"`
	Category      Category             `json:"category"`
	Level         Level                `json:"level,omitempty"`
	Place         Place                `json:"place,omitempty"`
	Experience    ExperienceBracket    `json:"experience_bracket,omitempty"`
	Participation ParticipationBracket `json:"participation_bracket,omitempty"`
}

// Normalize lowercases and trims the free-form fields so lookups are
// insensitive to client formatting.
func (c Classification) Normalize() Classification {
	c.Type = Type(clean(string(c.Type)))
	c.Category = Category(clean(string(c.Category)))
	c.Level = Level(clean(string(c.Level)))
	c.Place = Place(clean(string(c.Place)))
	c.Experience = ExperienceBracket(clean(string(c.Experience)))
	c.Participation = ParticipationBracket(clean(string(c.Participation)))
	return c
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// competitiveTable scores level x place for competitive placements.
var competitiveTable = map[Place]map[Level]int{
	PlaceFirst:       {LevelCity: 35, LevelRegional: 40, LevelNational: 45, LevelInternational: 50},
	PlaceSecond:      {LevelCity: 30, LevelRegional: 35, LevelNational: 40, LevelInternational: 45},
	PlaceThird:       {LevelCity: 25, LevelRegional: 30, LevelNational: 35, LevelInternational: 40},
	PlaceCertificate: {LevelCity: 10, LevelRegional: 15, LevelNational: 20, LevelInternational: 25},
}

// socialTable scores social activities by level; volunteering outranks
// one-off social events.
var socialTable = map[Category]map[Level]int{
	CategorySocialEvents: {LevelCity: 10, LevelRegional: 15, LevelNational: 20},
	CategoryVolunteering: {LevelCity: 25, LevelRegional: 30, LevelNational: 35},
}

var experienceTable = map[ExperienceBracket]int{
	ExperienceUpToOne:   10,
	ExperienceUpToTwo:   15,
	ExperienceUpToThree: 20,
	ExperienceThreePlus: 25,
}

var participationTable = map[ParticipationBracket]int{
	ParticipationUpTo40: 10,
	ParticipationUpTo70: 20,
	ParticipationUpTo90: 30,
}

const specialistCooperationPoints = 10

// typeCategories narrows which categories are valid for each type.
var typeCategories = map[Type][]Category{
	TypeStudentResult:  {CategoryOlympiad, CategoryCompetition},
	TypeTeacherResult:  {CategoryProfessionalCompetition, CategoryCompetition},
	TypeSocialActivity: {CategorySocialEvents, CategoryVolunteering},
	TypeEducationalActivity: {
		CategoryClassroomManagement,
		CategoryParentEngagement,
		CategorySpecialistCooperation,
	},
}

func categoryValidFor(t Type, c Category) bool {
	for _, valid := range typeCategories[t] {
		if valid == c {
			return true
		}
	}
	return false
}

// Score returns the point value for a classification. The second return
// value reports whether the classification matched a table; unmatched
// classifications score 0 rather than failing, preserving the permissive
// behaviour clients depend on.
func Score(c Classification) (int, bool) {
	c = c.Normalize()
	if !categoryValidFor(c.Type, c.Category) {
		return 0, false
	}

	switch c.Category {
	case CategoryOlympiad, CategoryCompetition, CategoryProfessionalCompetition:
		points, ok := competitiveTable[c.Place][c.Level]
		return points, ok

	case CategorySocialEvents, CategoryVolunteering:
		points, ok := socialTable[c.Category][c.Level]
		return points, ok

	case CategoryClassroomManagement:
		points, ok := experienceTable[c.Experience]
		return points, ok

	case CategoryParentEngagement:
		points, ok := participationTable[c.Participation]
		return points, ok

	case CategorySpecialistCooperation:
		return specialistCooperationPoints, true
	}
	return 0, false
}
