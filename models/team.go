package models

const (
	PositionCenter   = "CE"
	PositionSetter   = "PR" // armador
	PositionOutside  = "AR"
	PositionOpposite = "OP"
	PositionLibero   = "LI"

	DefaultAvatarURL = "https://ui-avatars.com/api/?background=random&name=Player"
)

var Positions = []string{PositionCenter, PositionSetter, PositionOutside, PositionOpposite, PositionLibero}

type Team struct {
	ID         string   `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalID *string  `gorm:"uniqueIndex" json:"external_id,omitempty"` // set for rows mirrored from the roster service
	Name       string   `gorm:"uniqueIndex:idx_teams_name,where:deleted_at IS NULL;not null" json:"name"`
	Slug       string   `gorm:"uniqueIndex:idx_teams_slug,where:deleted_at IS NULL;not null" json:"slug"`
	Players    []Player `gorm:"foreignKey:TeamID" json:"players,omitempty"`

	Timestamps
}

type Player struct {
	ID           string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalID   *string `gorm:"uniqueIndex" json:"external_id,omitempty"`
	TeamID       string  `gorm:"type:uuid;not null;index" json:"team_id"`
	Team         *Team   `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Name         string  `gorm:"not null" json:"name"`
	SearchName   string  `gorm:"index" json:"-"` // ASCII-folded lowercase name for lookups
	JerseyNumber int     `gorm:"not null;check:jersey_number BETWEEN 0 AND 99" json:"jersey_number"`
	Position     string  `gorm:"type:varchar(2);not null" json:"position"`
	AvatarURL    string  `json:"avatar_url"`

	Timestamps
}
