package record

import (
	"encoding/json"
	"time"
)

// ArchiveMethod records how a source was preserved.
type ArchiveMethod string

const (
	ArchiveWayback       ArchiveMethod = "WAYBACK"
	ArchivePDF           ArchiveMethod = "PDF"
	ArchiveScreenshot    ArchiveMethod = "SCREENSHOT"
	ArchiveVideoDownload ArchiveMethod = "VIDEO_DOWNLOAD"
	ArchiveManual        ArchiveMethod = "MANUAL"
)

// CandidateStatus is the electoral status of a candidate.
type CandidateStatus string

const (
	CandidatePotential    CandidateStatus = "POTENTIAL"
	CandidateOfficial     CandidateStatus = "OFFICIAL"
	CandidateWithdrawn    CandidateStatus = "WITHDRAWN"
	CandidateDisqualified CandidateStatus = "DISQUALIFIED"
)

// ListStatus is the lifecycle status of an electoral list.
type ListStatus string

const (
	ListDraft     ListStatus = "DRAFT"
	ListAnnounced ListStatus = "ANNOUNCED"
	ListOfficial  ListStatus = "OFFICIAL"
	ListWithdrawn ListStatus = "WITHDRAWN"
)

// PhotoStyle selects the placeholder drawn when no photo is published.
type PhotoStyle string

const (
	PhotoGeometric  PhotoStyle = "GEOMETRIC"
	PhotoInitials   PhotoStyle = "INITIALS"
	PhotoSilhouette PhotoStyle = "SILHOUETTE"
)

// AffiliationType classifies a candidate affiliation.
type AffiliationType string

const (
	AffiliationParty    AffiliationType = "PARTY"
	AffiliationBloc     AffiliationType = "BLOC"
	AffiliationList     AffiliationType = "LIST"
	AffiliationRole     AffiliationType = "ROLE"
	AffiliationAlliance AffiliationType = "ALLIANCE"
)

// StatementKind classifies a political statement.
type StatementKind string

const (
	StatementQuote     StatementKind = "QUOTE"
	StatementInterview StatementKind = "INTERVIEW"
	StatementVote      StatementKind = "VOTE"
	StatementProgram   StatementKind = "PROGRAM"
	StatementOther     StatementKind = "OTHER"
)

// AuditAction is the verb of an audit log entry.
type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditLogin  AuditAction = "LOGIN"
	AuditLogout AuditAction = "LOGOUT"
)

// Role grants access to admin routes.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleEditor Role = "EDITOR"
	RoleViewer Role = "VIEWER"
)

// Cycle is an election cycle.
type Cycle struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CycleRef is the cycle summary embedded in districts and lists.
type CycleRef struct {
	Year int `json:"year"`
}

// Ref is the trilingual summary of a related district or list.
type Ref struct {
	ID        string `json:"id"`
	NameAr    string `json:"nameAr"`
	NameEn    string `json:"nameEn"`
	NameFr    string `json:"nameFr"`
	SeatCount *int   `json:"seatCount,omitempty"`
	Status    string `json:"status,omitempty"`
}

// Counts holds related-row counts, serialized as "_count".
type Counts struct {
	Candidates *int `json:"candidates,omitempty"`
	Lists      *int `json:"lists,omitempty"`
}

// District is an electoral district within a cycle.
type District struct {
	ID        string    `json:"id"`
	CycleID   string    `json:"cycleId"`
	NameAr    string    `json:"nameAr"`
	NameEn    string    `json:"nameEn"`
	NameFr    string    `json:"nameFr"`
	SeatCount int       `json:"seatCount"`
	Notes     *string   `json:"notes"`
	Cycle     *CycleRef `json:"cycle,omitempty"`
	Count     *Counts   `json:"_count,omitempty"`
}

// DistrictDetail is a district with its candidates and lists.
type DistrictDetail struct {
	District
	Candidates []CandidateSummary `json:"candidates"`
	Lists      []ElectoralList    `json:"lists"`
}

// ElectoralList is a list competing in a district.
type ElectoralList struct {
	ID          string     `json:"id"`
	CycleID     string     `json:"cycleId"`
	DistrictID  string     `json:"districtId"`
	NameAr      string     `json:"nameAr"`
	NameEn      string     `json:"nameEn"`
	NameFr      string     `json:"nameFr"`
	Status      ListStatus `json:"status"`
	AnnouncedAt *time.Time `json:"announcedAt"`
	Notes       *string    `json:"notes"`
	District    *Ref       `json:"district,omitempty"`
	Cycle       *CycleRef  `json:"cycle,omitempty"`
	Count       *Counts    `json:"_count,omitempty"`
}

// ListDetail is a list with its candidates.
type ListDetail struct {
	ElectoralList
	Candidates []CandidateSummary `json:"candidates"`
}

// CandidateSummary is the short candidate form used inside other records.
type CandidateSummary struct {
	ID                    string          `json:"id"`
	Slug                  string          `json:"slug"`
	FullNameAr            string          `json:"fullNameAr"`
	FullNameEn            string          `json:"fullNameEn"`
	FullNameFr            string          `json:"fullNameFr"`
	Status                CandidateStatus `json:"status"`
	PlaceholderPhotoStyle PhotoStyle      `json:"placeholderPhotoStyle"`
}

// Candidate is a person standing in a cycle.
type Candidate struct {
	ID                    string          `json:"id"`
	CycleID               string          `json:"cycleId"`
	DistrictID            string          `json:"districtId"`
	CurrentListID         *string         `json:"currentListId"`
	FullNameAr            string          `json:"fullNameAr"`
	FullNameEn            string          `json:"fullNameEn"`
	FullNameFr            string          `json:"fullNameFr"`
	Slug                  string          `json:"slug"`
	Status                CandidateStatus `json:"status"`
	PlaceholderPhotoStyle PhotoStyle      `json:"placeholderPhotoStyle"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
	District              *Ref            `json:"district,omitempty"`
	CurrentList           *Ref            `json:"currentList,omitempty"`
}

// CandidateProfile is the public profile page payload.
type CandidateProfile struct {
	Candidate
	Affiliations []Affiliation `json:"affiliations"`
	Statements   []Statement   `json:"statements"`
	Sources      []Source      `json:"sources"`
}

// Center is a polling center.
type Center struct {
	ID         string  `json:"id"`
	DistrictID string  `json:"districtId"`
	NameAr     string  `json:"nameAr"`
	NameEn     string  `json:"nameEn"`
	NameFr     string  `json:"nameFr"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	AddressAr  *string `json:"addressAr"`
	AddressEn  *string `json:"addressEn"`
	AddressFr  *string `json:"addressFr"`
	Notes      *string `json:"notes"`
	District   *Ref    `json:"district,omitempty"`
}

// Topic groups statements by subject.
type Topic struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	NameAr string `json:"nameAr"`
	NameEn string `json:"nameEn"`
	NameFr string `json:"nameFr"`
}

// Source is an archived copy of a publication. The archive fields
// (OriginURL, ArchivedURL, ArchivedAt, ArchiveMethod) and the Fingerprint
// derived from them never change after creation.
type Source struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Publisher     string        `json:"publisher"`
	OriginURL     string        `json:"originUrl"`
	ArchivedURL   string        `json:"archivedUrl"`
	ArchivedAt    time.Time     `json:"archivedAt"`
	ArchiveMethod ArchiveMethod `json:"archiveMethod"`
	ContentType   *string       `json:"contentType"`
	Checksum      *string       `json:"checksum"`
	Notes         *string       `json:"notes"`
	Fingerprint   string        `json:"fingerprint"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// SourceRef is the citation attached to statements and affiliations.
type SourceRef struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ArchivedURL string    `json:"archivedUrl"`
	ArchivedAt  time.Time `json:"archivedAt"`
}

// Statement is an attributed political statement. Append-only.
type Statement struct {
	ID          string        `json:"id"`
	CandidateID string        `json:"candidateId"`
	TopicID     string        `json:"topicId"`
	Kind        StatementKind `json:"kind"`
	SummaryAr   *string       `json:"summaryAr"`
	SummaryEn   *string       `json:"summaryEn"`
	SummaryFr   *string       `json:"summaryFr"`
	OccurredAt  *time.Time    `json:"occurredAt"`
	SourceID    string        `json:"sourceId"`
	CreatedAt   time.Time     `json:"createdAt"`
	Topic       *Topic        `json:"topic,omitempty"`
	Source      *SourceRef    `json:"source,omitempty"`
}

// Affiliation links a candidate to a party, bloc, list or role. Append-only.
type Affiliation struct {
	ID          string          `json:"id"`
	CandidateID string          `json:"candidateId"`
	Type        AffiliationType `json:"type"`
	NameAr      string          `json:"nameAr"`
	NameEn      string          `json:"nameEn"`
	NameFr      string          `json:"nameFr"`
	StartDate   time.Time       `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	Notes       *string         `json:"notes"`
	SourceID    string          `json:"sourceId"`
	CreatedAt   time.Time       `json:"createdAt"`
	Source      *SourceRef      `json:"source,omitempty"`
}

// Party is a PARTY affiliation name grouped across candidates.
type Party struct {
	NameAr         string `json:"nameAr"`
	NameEn         string `json:"nameEn"`
	NameFr         string `json:"nameFr"`
	Slug           string `json:"slug"`
	CandidateCount int    `json:"candidateCount"`
}

// PartyDetail is a party with its affiliated candidates.
type PartyDetail struct {
	Party
	Candidates []Candidate `json:"candidates"`
}

// AuditLog is one audit trail entry. Append-only.
type AuditLog struct {
	ID          string          `json:"id"`
	ActorUserID string          `json:"actorUserId"`
	Action      AuditAction     `json:"action"`
	EntityType  string          `json:"entityType"`
	EntityID    *string         `json:"entityId"`
	Metadata    json.RawMessage `json:"metadata"`
	IP          *string         `json:"ip"`
	UserAgent   *string         `json:"userAgent"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ProfileVersion is a frozen snapshot of a candidate profile. Append-only.
type ProfileVersion struct {
	ID            string          `json:"id"`
	CandidateID   string          `json:"candidateId"`
	VersionNumber int             `json:"versionNumber"`
	Snapshot      json.RawMessage `json:"snapshot"`
	SnapshotHash  string          `json:"snapshotHash"`
	ChangeNote    *string         `json:"changeNote"`
	CreatedBy     string          `json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// User is an admin panel account.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}
