package listings

// Type discriminates the three bookable listing kinds.
type Type string

const (
	TypeHouse Type = "house"
	TypeHotel Type = "hotel"
	TypeEvent Type = "event"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeHouse, TypeHotel, TypeEvent:
		return true
	}
	return false
}

// IsLodging reports whether the type is bookable by date range.
func (t Type) IsLodging() bool {
	return t == TypeHouse || t == TypeHotel
}

func (t Type) String() string {
	return string(t)
}

type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusHidden  Status = "hidden"
	StatusDeleted Status = "deleted"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusHidden, StatusDeleted:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}
