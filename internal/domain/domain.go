package domain

import "time"

// Track separates the generic idea pipeline from the challenge pipeline.
// The two tracks share one table and status machine but carry independent
// reviewer roles and quorum policy.
type Track string

const (
	TrackIdea      Track = "idea"
	TrackChallenge Track = "challenge"
)

func (t Track) Valid() bool {
	return t == TrackIdea || t == TrackChallenge
}

type Status string

const (
	StatusDraft        Status = "draft"
	StatusStage1Review Status = "stage1_review"
	StatusStage1Revise Status = "stage1_revise"
	StatusStage2Review Status = "stage2_review"
	StatusStage2Revise Status = "stage2_revise"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusWithdrawn    Status = "withdrawn"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusStage1Review, StatusStage1Revise,
		StatusStage2Review, StatusStage2Revise,
		StatusApproved, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusWithdrawn
}

// AuthorEditable reports whether the owner may still edit content,
// withdraw, or receive collaboration proposals targeting these states.
func (s Status) AuthorEditable() bool {
	return s == StatusDraft || s == StatusStage1Revise || s == StatusStage2Revise
}

type Stage string

const (
	Stage1 Stage = "stage1"
	Stage2 Stage = "stage2"
)

func (s Stage) Valid() bool {
	return s == Stage1 || s == Stage2
}

// ReviewStatus is the status an idea must hold for this stage to accept
// reviews or a decision.
func (s Stage) ReviewStatus() Status {
	if s == Stage2 {
		return StatusStage2Review
	}
	return StatusStage1Review
}

type Recommendation string

const (
	RecommendApprove Recommendation = "approve"
	RecommendRevise  Recommendation = "revise"
	RecommendReject  Recommendation = "reject"
)

func (r Recommendation) Valid() bool {
	return r == RecommendApprove || r == RecommendRevise || r == RecommendReject
}

// DecisionOutcome maps a stage and decision value to the resulting idea
// status. "revise" always routes back to the same stage's revise status,
// never forward; "reject" is absorbing from either stage.
func DecisionOutcome(stage Stage, decision Recommendation) (Status, bool) {
	switch stage {
	case Stage1:
		switch decision {
		case RecommendApprove:
			return StatusStage2Review, true
		case RecommendRevise:
			return StatusStage1Revise, true
		case RecommendReject:
			return StatusRejected, true
		}
	case Stage2:
		switch decision {
		case RecommendApprove:
			return StatusApproved, true
		case RecommendRevise:
			return StatusStage2Revise, true
		case RecommendReject:
			return StatusRejected, true
		}
	}
	return "", false
}

// ResubmitTarget maps an author-revise status to the review status a
// resubmission returns the idea to.
func ResubmitTarget(s Status) (Status, bool) {
	switch s {
	case StatusDraft, StatusStage1Revise:
		return StatusStage1Review, true
	case StatusStage2Revise:
		return StatusStage2Review, true
	}
	return "", false
}

// Roles the platform recognises. Admin implicitly satisfies every role
// check, mirroring the identity directory contract.
const (
	RoleSME   = "subject-matter-expert"
	RoleBoard = "board"
	RoleDD    = "deputy-director"
	RoleAdmin = "admin"
)

// ReviewerRole returns the role required to review the given stage on the
// given track.
func ReviewerRole(track Track, stage Stage) string {
	// Both tracks use the same role split today; the indirection keeps the
	// tracks independent if a deployment ever diverges them.
	_ = track
	if stage == Stage2 {
		return RoleBoard
	}
	return RoleSME
}

type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Idea is a submission on either track. Status is mutated only by the
// decision compiler, the collaboration engine (accept/rollback bump the
// revision counter, not the status), or the owner's own submit/resubmit/
// withdraw while in an author-editable state.
type Idea struct {
	ID                    uint64 `gorm:"primaryKey"`
	Track                 Track  `gorm:"index;default:idea"`
	Title                 string
	Abstract              string
	ProblemStatement      string
	ProposedSolution      string
	CostBenefit           string
	Disclosure            string
	OwnerID               uint64 `gorm:"index"`
	Status                Status `gorm:"index"`
	CurrentRevisionNumber uint64
	AttachmentPath        *string
	AttachmentName        *string
	AttachmentMime        *string
	CollaborationEnabled  bool
	CollaborationDeadline *time.Time
	TeamMembers           []TeamMember `gorm:"serializer:json"`
	LikeCount             uint64
	SubmittedAt           *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Review is one reviewer's recommendation for one stage. Append-only;
// corrections require a decision, not mutation of history.
type Review struct {
	ID             uint64 `gorm:"primaryKey"`
	IdeaID         uint64 `gorm:"uniqueIndex:idx_review_once,priority:1"`
	ReviewerID     uint64 `gorm:"uniqueIndex:idx_review_once,priority:2"`
	Stage          Stage  `gorm:"uniqueIndex:idx_review_once,priority:3"`
	Recommendation Recommendation
	Comments       string
	CreatedAt      time.Time
}

// Decision is the compiled outcome of one review stage. The unique index
// on (idea, stage) is what closes the double-decision race.
type Decision struct {
	ID               uint64 `gorm:"primaryKey"`
	IdeaID           uint64 `gorm:"uniqueIndex:idx_decision_once,priority:1"`
	Stage            Stage  `gorm:"uniqueIndex:idx_decision_once,priority:2"`
	Decision         Recommendation
	CompiledComments string
	DDComments       string
	DeciderID        uint64
	PreviousStatus   Status
	NewStatus        Status
	CreatedAt        time.Time
}

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

type CollaborationRequest struct {
	ID          uint64 `gorm:"primaryKey"`
	IdeaID      uint64 `gorm:"index:idx_collab_req_idea"`
	RequesterID uint64 `gorm:"index"`
	OwnerID     uint64
	Message     string
	Status      RequestStatus `gorm:"default:pending"`
	RespondedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalAccepted ProposalStatus = "accepted"
	ProposalRejected ProposalStatus = "rejected"
)

// FieldPatch carries proposed values for the editable idea fields. A nil
// pointer means "no change requested for this field".
type FieldPatch struct {
	Title            *string `json:"title"`
	Abstract         *string `json:"abstract"`
	ProblemStatement *string `json:"problem_statement"`
	ProposedSolution *string `json:"proposed_solution"`
	CostBenefit      *string `json:"cost_benefit"`
	Disclosure       *string `json:"disclosure"`
}

// ChangedFields compares each non-nil proposed value against the idea's
// current value. Comparison is strict raw inequality; whitespace-only
// differences register as changes.
func (p FieldPatch) ChangedFields(idea *Idea) []string {
	var changed []string
	if p.Title != nil && *p.Title != idea.Title {
		changed = append(changed, "title")
	}
	if p.Abstract != nil && *p.Abstract != idea.Abstract {
		changed = append(changed, "abstract")
	}
	if p.ProblemStatement != nil && *p.ProblemStatement != idea.ProblemStatement {
		changed = append(changed, "problem_statement")
	}
	if p.ProposedSolution != nil && *p.ProposedSolution != idea.ProposedSolution {
		changed = append(changed, "proposed_solution")
	}
	if p.CostBenefit != nil && *p.CostBenefit != idea.CostBenefit {
		changed = append(changed, "cost_benefit")
	}
	if p.Disclosure != nil && *p.Disclosure != idea.Disclosure {
		changed = append(changed, "disclosure")
	}
	return changed
}

// Apply copies every non-nil field onto the idea.
func (p FieldPatch) Apply(idea *Idea) {
	if p.Title != nil {
		idea.Title = *p.Title
	}
	if p.Abstract != nil {
		idea.Abstract = *p.Abstract
	}
	if p.ProblemStatement != nil {
		idea.ProblemStatement = *p.ProblemStatement
	}
	if p.ProposedSolution != nil {
		idea.ProposedSolution = *p.ProposedSolution
	}
	if p.CostBenefit != nil {
		idea.CostBenefit = *p.CostBenefit
	}
	if p.Disclosure != nil {
		idea.Disclosure = *p.Disclosure
	}
}

// Merge overlays edits onto the base patch, field by field. Used when the
// author tweaks a proposal before accepting it.
func (p FieldPatch) Merge(edits FieldPatch) FieldPatch {
	out := p
	if edits.Title != nil {
		out.Title = edits.Title
	}
	if edits.Abstract != nil {
		out.Abstract = edits.Abstract
	}
	if edits.ProblemStatement != nil {
		out.ProblemStatement = edits.ProblemStatement
	}
	if edits.ProposedSolution != nil {
		out.ProposedSolution = edits.ProposedSolution
	}
	if edits.CostBenefit != nil {
		out.CostBenefit = edits.CostBenefit
	}
	if edits.Disclosure != nil {
		out.Disclosure = edits.Disclosure
	}
	return out
}

type CollaborationProposal struct {
	ID                 uint64 `gorm:"primaryKey"`
	IdeaID             uint64 `gorm:"index"`
	CollaboratorID     uint64 `gorm:"index"`
	OriginalAuthorID   uint64
	Proposed           FieldPatch `gorm:"embedded;embeddedPrefix:proposed_"`
	ChangedFields      []string   `gorm:"serializer:json"`
	CollaborationNotes string
	ChangeSummary      string
	Status             ProposalStatus `gorm:"default:pending"`
	ReviewNotes        string
	ReviewedBy         *uint64
	ReviewedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IdeaVersion is a full snapshot of the editable fields plus status at the
// moment just before a mutation. Append-only; version numbers are 1-based
// and gapless per idea.
type IdeaVersion struct {
	ID                      uint64 `gorm:"primaryKey"`
	IdeaID                  uint64 `gorm:"uniqueIndex:idx_version_once,priority:1"`
	VersionNumber           uint64 `gorm:"uniqueIndex:idx_version_once,priority:2"`
	Title                   string
	Abstract                string
	ProblemStatement        string
	ProposedSolution        string
	CostBenefit             string
	Disclosure              string
	Status                  Status
	ChangeDescription       string
	ChangedBy               uint64
	CollaborationProposalID *uint64
	CreatedAt               time.Time
}

// Snapshot captures the idea's editable fields into a version row. The
// caller fills in number, description, actor, and proposal linkage.
func Snapshot(idea *Idea) IdeaVersion {
	return IdeaVersion{
		IdeaID:           idea.ID,
		Title:            idea.Title,
		Abstract:         idea.Abstract,
		ProblemStatement: idea.ProblemStatement,
		ProposedSolution: idea.ProposedSolution,
		CostBenefit:      idea.CostBenefit,
		Disclosure:       idea.Disclosure,
		Status:           idea.Status,
	}
}

// Restore copies a version's editable fields back onto the idea. Status is
// deliberately left alone: status transitions belong to the decision
// compiler and the author's own submit/withdraw, never to a rollback.
func (v *IdeaVersion) Restore(idea *Idea) {
	idea.Title = v.Title
	idea.Abstract = v.Abstract
	idea.ProblemStatement = v.ProblemStatement
	idea.ProposedSolution = v.ProposedSolution
	idea.CostBenefit = v.CostBenefit
	idea.Disclosure = v.Disclosure
}

// User is an account that can own ideas, review, or decide, depending on
// the roles granted through UserRole.
type User struct {
	ID           uint64
	Name         string
	Email        string `gorm:"uniqueIndex"`
	Password     string `gorm:"-"` // input only, not stored in db
	PasswordHash string
	IsActive     bool `gorm:"default:true"`
	TokenVersion uint64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SafeUser represents a user without sensitive information
type SafeUser struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	IsActive  bool      `json:"is_active"`
}

// ToSafeUser converts a User to a SafeUser
func (u *User) ToSafeUser() SafeUser {
	return SafeUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		IsActive:  u.IsActive,
	}
}

// UserRole is one role grant. A user may hold several.
type UserRole struct {
	ID     uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"uniqueIndex:idx_user_role,priority:1"`
	Role   string `gorm:"uniqueIndex:idx_user_role,priority:2"`
}
