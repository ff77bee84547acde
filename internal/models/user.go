package models

import (
	"time"
)

// Domain is the broad department a member belongs to.
type Domain string

const (
	DomainTechnical Domain = "Technical"
	DomainCorporate Domain = "Corporate"
	DomainCreatives Domain = "Creatives"
	DomainExecutive Domain = "Executive"
	DomainAdvisory  Domain = "Advisory"
)

// Domains lists every valid domain value.
var Domains = []Domain{
	DomainTechnical,
	DomainCorporate,
	DomainCreatives,
	DomainExecutive,
	DomainAdvisory,
}

// Subdomain is the narrower vertical inside a domain. It is only
// meaningful for members at level 4 and below in the hierarchy.
type Subdomain string

const (
	// Technical verticals
	SubdomainWebDev  Subdomain = "Web Development"
	SubdomainAppDev  Subdomain = "App Development"
	SubdomainML      Subdomain = "Machine Learning"
	SubdomainSystems Subdomain = "Systems"

	// Corporate verticals
	SubdomainMarketing   Subdomain = "Marketing"
	SubdomainSponsorship Subdomain = "Sponsorship"
	SubdomainOperations  Subdomain = "Operations"

	// Creatives verticals
	SubdomainDesign  Subdomain = "Design"
	SubdomainContent Subdomain = "Content"
	SubdomainVideo   Subdomain = "Video Editing"
)

// Subdomains lists every valid subdomain value.
var Subdomains = []Subdomain{
	SubdomainWebDev,
	SubdomainAppDev,
	SubdomainML,
	SubdomainSystems,
	SubdomainMarketing,
	SubdomainSponsorship,
	SubdomainOperations,
	SubdomainDesign,
	SubdomainContent,
	SubdomainVideo,
}

// Hierarchy levels. 0 is the highest authority; larger numbers are more
// junior. The seed data is assumed to keep levels non-decreasing down
// every reports-to chain.
const (
	LevelPresident     = 0
	LevelVicePresident = 1
	LevelExecutive     = 2
	LevelDirector      = 3
	LevelLead          = 4
	LevelMember        = 5
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Name         string    `gorm:"type:varchar(255);not null" json:"name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"type:varchar(32)" json:"phone"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Position     string    `gorm:"type:varchar(255)" json:"position"`
	Domain       Domain    `gorm:"type:varchar(32);not null" json:"domain"`
	Subdomain    Subdomain `gorm:"type:varchar(64)" json:"subdomain,omitempty"`
	ReportsTo    *uint64   `json:"reports_to,omitempty"`
	Level        int       `gorm:"not null" json:"level"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Manager       *User  `gorm:"foreignKey:ReportsTo" json:"-"`
	AssignedTasks []Task `gorm:"foreignKey:AssignerID" json:"-"`
}

// FirstName returns the leading word of the member's display name, used
// for email salutations.
func (u User) FirstName() string {
	for i, r := range u.Name {
		if r == ' ' {
			return u.Name[:i]
		}
	}
	return u.Name
}

// ValidDomain reports whether d is one of the fixed domain values.
func ValidDomain(d Domain) bool {
	for _, known := range Domains {
		if d == known {
			return true
		}
	}
	return false
}

// ValidSubdomain reports whether s is one of the fixed subdomain values.
// The empty subdomain is valid; it simply means the member is not part
// of a vertical.
func ValidSubdomain(s Subdomain) bool {
	if s == "" {
		return true
	}
	for _, known := range Subdomains {
		if s == known {
			return true
		}
	}
	return false
}
