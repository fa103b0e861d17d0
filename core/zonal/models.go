package zonal

import (
	"strconv"
	"time"

	"github.com/trezcool/campusdash/core"
)

// Scope is where the caller sits: their college and its district and zone.
type Scope struct {
	UserID     string `db:"user_id"`
	FullName   string `db:"full_name"`
	OrgID      string `db:"org_id"`
	DistrictID string `db:"district_id"`
	ZoneID     string `db:"zone_id"`
	ZoneName   string `db:"zone_name"`
}

// Details summarises the caller's zone.
type Details struct {
	Zone          string `json:"zone"`
	Rank          *int   `json:"rank"`
	ZonalLead     string `json:"zonal_lead"`
	Karma         int64  `json:"karma"`
	TotalMembers  int    `json:"total_members"`
	ActiveMembers int    `json:"active_members"`
}

type District struct {
	District string `json:"district" db:"name"`
	ID       string `json:"id" db:"id"`
	Rank     int    `json:"rank" db:"-"`
}

type LevelCount struct {
	LevelOrder    int `json:"level_order" db:"level_order"`
	StudentsCount int `json:"students_count" db:"students_count"`
}

// CollegeLevels is the level breakdown of a college's students.
type CollegeLevels struct {
	OrgID       string       `json:"-" db:"id"`
	CollegeName string       `json:"college_name" db:"title"`
	CollegeCode string       `json:"college_code" db:"code"`
	Level       []LevelCount `json:"level" db:"-"`
}

type Student struct {
	UserID    string    `json:"-" db:"user_id"`
	FullName  string    `json:"fullname" db:"full_name"`
	Karma     int64     `json:"karma" db:"karma"`
	Muid      string    `json:"muid" db:"muid"`
	Rank      *int      `json:"rank" db:"-"`
	Level     *string   `json:"level" db:"level"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

func (Student) CSVHeader() []string {
	return []string{"fullname", "karma", "muid", "rank", "level", "created_at"}
}

func (s Student) CSVRecord() []string {
	return []string{
		s.FullName, strconv.FormatInt(s.Karma, 10), s.Muid, intPtrString(s.Rank),
		core.StringValue(s.Level), s.CreatedAt.Format(time.RFC3339),
	}
}

type College struct {
	Title      string  `json:"title" db:"title"`
	Code       string  `json:"code" db:"code"`
	Level      *int    `json:"level" db:"level"`
	Lead       *string `json:"lead" db:"lead"`
	LeadNumber *string `json:"lead_number" db:"lead_number"`
}

func (College) CSVHeader() []string {
	return []string{"title", "code", "level", "lead", "lead_number"}
}

func (c College) CSVRecord() []string {
	return []string{c.Title, c.Code, intPtrString(c.Level), core.StringValue(c.Lead), core.StringValue(c.LeadNumber)}
}

func intPtrString(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
