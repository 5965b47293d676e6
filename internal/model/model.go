package model

import (
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Encounter{},
	&Movement{},
	&Undo{},
	&ScaleChange{},
	&RoundReset{},
	&DamageEvent{},
	&MishapEvent{},
}

// Encounter is one recorded chase or combat encounter
type Encounter struct {
	gorm.Model
	Name      string     `json:"name" gorm:"size:200"`
	StartTime time.Time  `json:"startTime" gorm:"index:idx_encounter_start"`
	EndTime   *time.Time `json:"endTime"`
	Seed      int64      `json:"seed"`
	Tag       string     `json:"tag" gorm:"size:127"`

	Movements    []Movement
	Undos        []Undo
	ScaleChanges []ScaleChange
	RoundResets  []RoundReset
	DamageEvents []DamageEvent
	MishapEvents []MishapEvent
}

func (*Encounter) TableName() string {
	return "encounters"
}

// Movement is an accepted or denied movement request
type Movement struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        time.Time `json:"time"`
	EncounterID uint      `json:"encounterId" gorm:"index:idx_movement_encounter_id"`
	Encounter   Encounter `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EncounterID;"`
	Round       int       `json:"round" gorm:"index:idx_movement_round"`
	Phase       string    `json:"phase" gorm:"size:16"`
	Tier        string    `json:"tier" gorm:"size:32"`
	EntityKind  string    `json:"entityKind" gorm:"size:16"`
	EntityID    string    `json:"entityId" gorm:"size:64;index:idx_movement_entity"`

	From       geom.Point `json:"from"`
	To         geom.Point `json:"to"`
	RequestedX float64    `json:"requestedX"`
	RequestedY float64    `json:"requestedY"`
	AcceptedX  float64    `json:"acceptedX"`
	AcceptedY  float64    `json:"acceptedY"`
	FeetMoved  float64    `json:"feetMoved"`
	Rejected   bool       `json:"rejected" gorm:"default:false"`
	Reason     string     `json:"reason" gorm:"size:64"`
	Clamped    bool       `json:"clamped" gorm:"default:false"`
}

func (*Movement) TableName() string {
	return "movements"
}

// Undo is a reverted movement
type Undo struct {
	ID           uint       `json:"id" gorm:"primarykey;autoIncrement;"`
	Time         time.Time  `json:"time"`
	EncounterID  uint       `json:"encounterId" gorm:"index:idx_undo_encounter_id"`
	Encounter    Encounter  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EncounterID;"`
	Round        int        `json:"round"`
	EntityKind   string     `json:"entityKind" gorm:"size:16"`
	EntityID     string     `json:"entityId" gorm:"size:64"`
	Restored     geom.Point `json:"restored"`
	FeetRefunded float64    `json:"feetRefunded"`
}

func (*Undo) TableName() string {
	return "undos"
}

// ScaleChange is the governing tier changing
type ScaleChange struct {
	ID          uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        time.Time `json:"time"`
	EncounterID uint      `json:"encounterId" gorm:"index:idx_scalechange_encounter_id"`
	Encounter   Encounter `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EncounterID;"`
	Round       int       `json:"round"`
	FromTier    string    `json:"fromTier" gorm:"size:32"`
	ToTier      string    `json:"toTier" gorm:"size:32"`
	Distance    float64   `json:"distance"`
	Manual      bool      `json:"manual" gorm:"default:false"`
}

func (*ScaleChange) TableName() string {
	return "scale_changes"
}

// RoundReset is the movement ledger being cleared at a round boundary
type RoundReset struct {
	ID             uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time           time.Time `json:"time"`
	EncounterID    uint      `json:"encounterId" gorm:"index:idx_roundreset_encounter_id"`
	Encounter      Encounter `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EncounterID;"`
	PreviousRound  int       `json:"previousRound"`
	Round          int       `json:"round"`
	Phase          string    `json:"phase" gorm:"size:16"`
	DiscardedMoves int       `json:"discardedMoves"`
}

func (*RoundReset) TableName() string {
	return "round_resets"
}

// DamageEvent is damage passing through a vehicle's threshold gate
type DamageEvent struct {
	ID              uint      `json:"id" gorm:"primarykey;autoIncrement;"`
	Time            time.Time `json:"time"`
	EncounterID     uint      `json:"encounterId" gorm:"index:idx_damage_encounter_id"`
	Encounter       Encounter `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EncounterID;"`
	Round           int       `json:"round"`
	VehicleID       string    `json:"vehicleId" gorm:"size:64;index:idx_damage_vehicle"`
	Damage          int       `json:"damage"`
	Threshold       int       `json:"threshold"`
	MishapThreshold int       `json:"mishapThreshold"`
	HPDelta         int       `json:"hpDelta"`
	Absorbed        bool      `json:"absorbed" gorm:"default:false"`
	MishapRolled    bool      `json:"mishapRolled" gorm:"default:false"`
}

func (*DamageEvent) TableName() string {
	return "damage_events"
}

// MishapEvent is a mishap table roll. Mishap holds the rolled entry as JSON,
// null when no valid mishap was found.
type MishapEvent struct {
	ID          uint           `json:"id" gorm:"primarykey;autoIncrement;"`
	Time        time.Time      `json:"time"`
	EncounterID uint           `json:"encounterId" gorm:"index:idx_mishap_encounter_id"`
	Encounter   Encounter      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;foreignkey:EncounterID;"`
	Round       int            `json:"round"`
	VehicleID   string         `json:"vehicleId" gorm:"size:64;index:idx_mishap_vehicle"`
	Roll        int            `json:"roll"`
	RerollCount int            `json:"rerollCount"`
	Name        string         `json:"name" gorm:"size:64"`
	Mishap      datatypes.JSON `json:"mishap"`
	Manual      bool           `json:"manual" gorm:"default:false"`
}

func (*MishapEvent) TableName() string {
	return "mishap_events"
}
