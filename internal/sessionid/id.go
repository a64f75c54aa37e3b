// Package sessionid mints and parses hive-manager session and agent
// identifiers and enforces the role-suffix authorization rules invariants
// 1 and 2 of the data model depend on.
package sessionid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Role identifies the kind of agent an id's suffix encodes.
type Role int

const (
	RoleUnknown Role = iota
	RoleQueen
	RoleMasterPlanner
	RolePlanner
	RoleWorker
	RolePlannerWorker
	RoleFusionVariant
	RoleJudge
)

// ParsedID is the decomposition of an agent id into session id, role, and
// the numeric indices carried by the suffix (planner/worker indices are -1
// when not applicable).
type ParsedID struct {
	SessionID     string
	Role          Role
	PlannerIndex  int
	WorkerIndex   int
	VariantName   string
}

var (
	workerSuffix         = regexp.MustCompile(`^(.+)-worker-(\d+)$`)
	plannerWorkerSuffix  = regexp.MustCompile(`^(.+)-planner-(\d+)-worker-(\d+)$`)
	plannerSuffix        = regexp.MustCompile(`^(.+)-planner-(\d+)$`)
	queenSuffix          = regexp.MustCompile(`^(.+)-queen$`)
	masterPlannerSuffix  = regexp.MustCompile(`^(.+)-master-planner$`)
	judgeSuffix          = regexp.MustCompile(`^(.+)-judge$`)
	fusionVariantSuffix  = regexp.MustCompile(`^(.+)-variant-([a-zA-Z0-9_-]+)$`)
	traversalChars       = regexp.MustCompile(`[./\\]`)
)

// NewSessionID mints a fresh opaque session identifier.
// It contains no path separators, dots, or traversal sequences.
func NewSessionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// NewMessageID mints a fresh opaque coordination message identifier.
func NewMessageID() string {
	return uuid.New().String()
}

// ValidateSessionID rejects ids carrying path separators, dots, or traversal
// sequences, per §3's attribute rule and §6's path-parameter validation.
func ValidateSessionID(id string) error {
	if id == "" {
		return fmt.Errorf("session id must not be empty")
	}
	if traversalChars.MatchString(id) {
		return fmt.Errorf("session id %q contains an illegal character", id)
	}
	if strings.Contains(id, "..") {
		return fmt.Errorf("session id %q contains a traversal sequence", id)
	}
	return nil
}

// QueenID, MasterPlannerID, PlannerID, WorkerID, PlannerWorkerID, and
// FusionVariantID build the structured agent id for each role, per §3.
func QueenID(sessionID string) string           { return sessionID + "-queen" }
func MasterPlannerID(sessionID string) string    { return sessionID + "-master-planner" }
func JudgeID(sessionID string) string            { return sessionID + "-judge" }
func PlannerID(sessionID string, n int) string   { return fmt.Sprintf("%s-planner-%d", sessionID, n) }
func WorkerID(sessionID string, n int) string    { return fmt.Sprintf("%s-worker-%d", sessionID, n) }
func FusionVariantID(sessionID, variant string) string {
	return fmt.Sprintf("%s-variant-%s", sessionID, variant)
}
func PlannerWorkerID(sessionID string, plannerN, workerN int) string {
	return fmt.Sprintf("%s-planner-%d-worker-%d", sessionID, plannerN, workerN)
}

// Parse decomposes an agent id into its session id and role, per §3
// invariant 2 ("role-claimed operations refuse ids whose suffix does not
// match the claim"). The most specific suffix (planner-N-worker-M) is
// checked before the more general worker-N suffix.
func Parse(id string) (ParsedID, error) {
	if m := plannerWorkerSuffix.FindStringSubmatch(id); m != nil {
		p, _ := strconv.Atoi(m[2])
		w, _ := strconv.Atoi(m[3])
		return ParsedID{SessionID: m[1], Role: RolePlannerWorker, PlannerIndex: p, WorkerIndex: w}, nil
	}
	if m := workerSuffix.FindStringSubmatch(id); m != nil {
		w, _ := strconv.Atoi(m[2])
		return ParsedID{SessionID: m[1], Role: RoleWorker, PlannerIndex: -1, WorkerIndex: w}, nil
	}
	if m := plannerSuffix.FindStringSubmatch(id); m != nil {
		p, _ := strconv.Atoi(m[2])
		return ParsedID{SessionID: m[1], Role: RolePlanner, PlannerIndex: p, WorkerIndex: -1}, nil
	}
	if m := masterPlannerSuffix.FindStringSubmatch(id); m != nil {
		return ParsedID{SessionID: m[1], Role: RoleMasterPlanner, PlannerIndex: -1, WorkerIndex: -1}, nil
	}
	if m := queenSuffix.FindStringSubmatch(id); m != nil {
		return ParsedID{SessionID: m[1], Role: RoleQueen, PlannerIndex: -1, WorkerIndex: -1}, nil
	}
	if m := judgeSuffix.FindStringSubmatch(id); m != nil {
		return ParsedID{SessionID: m[1], Role: RoleJudge, PlannerIndex: -1, WorkerIndex: -1}, nil
	}
	if m := fusionVariantSuffix.FindStringSubmatch(id); m != nil {
		return ParsedID{SessionID: m[1], Role: RoleFusionVariant, PlannerIndex: -1, WorkerIndex: -1, VariantName: m[2]}, nil
	}
	return ParsedID{}, fmt.Errorf("id %q does not carry a recognized role suffix", id)
}

// DisplayName renders the human-readable name used in coordination log
// lines and UI, per §8's boundary behavior: "abc123-worker-12" parses to
// "WORKER-12"; "abc123-planner-1-worker-2" parses to "WORKER-2".
func DisplayName(id string) string {
	p, err := Parse(id)
	if err != nil {
		return id
	}
	switch p.Role {
	case RoleQueen:
		return "QUEEN"
	case RoleMasterPlanner:
		return "MASTER-PLANNER"
	case RoleJudge:
		return "JUDGE"
	case RolePlanner:
		return fmt.Sprintf("PLANNER-%d", p.PlannerIndex)
	case RoleWorker:
		return fmt.Sprintf("WORKER-%d", p.WorkerIndex)
	case RolePlannerWorker:
		return fmt.Sprintf("WORKER-%d", p.WorkerIndex)
	case RoleFusionVariant:
		return fmt.Sprintf("VARIANT-%s", strings.ToUpper(p.VariantName))
	default:
		return id
	}
}

// HasSessionPrefix reports whether id belongs to session sessionID, the
// first leg of the injection manager's authorization check (§4.D rule 1).
func HasSessionPrefix(id, sessionID string) bool {
	return strings.HasPrefix(id, sessionID+"-")
}

// IsQueenOf reports whether id is exactly the queen id of sessionID
// (§4.D rule 2, strict suffix match).
func IsQueenOf(id, sessionID string) bool {
	return id == QueenID(sessionID)
}

// IsWorkerSuffixExact reports whether id carries exactly a `-worker-<N>`
// suffix scoped to sessionID (used by queen_inject's strict validation,
// per §9 open question 1: queen_inject never loosens this).
func IsWorkerSuffixExact(id, sessionID string) (workerIndex int, ok bool) {
	m := workerSuffix.FindStringSubmatch(id)
	if m == nil || m[1] != sessionID {
		return 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ContainsRoleSuffix reports whether id contains (not just ends with) a
// worker or planner-worker suffix scoped to sessionID. §9 open question 1:
// hive-manager accepts this loose match only for worker_inject/
// planner_inject (self-reporting), never for queen_inject.
func ContainsRoleSuffix(id, sessionID string, role Role) bool {
	if !HasSessionPrefix(id, sessionID) {
		return false
	}
	switch role {
	case RoleWorker:
		return strings.Contains(id, "-worker-")
	case RolePlanner:
		return strings.Contains(id, "-planner-")
	default:
		return false
	}
}
