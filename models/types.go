package models

// Proposal status constants
const (
	StatusActive   = "active"
	StatusPending  = "pending"
	StatusPassed   = "passed"
	StatusRejected = "rejected"
)

// Vote type constants
const (
	VoteApprove = "approve"
	VoteReject  = "reject"
)

// Statuses lists proposal states in contract enum order.
var Statuses = []string{StatusActive, StatusPending, StatusPassed, StatusRejected}

// VoteTypes lists vote choices in contract enum order.
var VoteTypes = []string{VoteApprove, VoteReject}

// ValidStatus reports whether s is a known proposal status
func ValidStatus(s string) bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// ValidVoteType reports whether v is approve or reject
func ValidVoteType(v string) bool {
	return v == VoteApprove || v == VoteReject
}

// Request types

type CreateProposalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type CastVoteRequest struct {
	VoteType string `json:"voteType"`
}

type EndProposalRequest struct {
	Status string `json:"status"`
}

// Response types

type CreateProposalResponse struct {
	ProposalID string `json:"proposalId"`
	DatabaseID string `json:"databaseId,omitempty"`
	ContractID string `json:"contractId,omitempty"`
}

type CastVoteResponse struct {
	VoteID  string `json:"voteId,omitempty"`
	Message string `json:"message"`
}

type StateResponse struct {
	Proposals   []Proposal `json:"proposals"`
	Votes       []Vote     `json:"votes"`
	CurrentUser User       `json:"currentUser"`
	Provisional bool       `json:"provisional"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Domain types

type Proposal struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Status       string `json:"status"`
	ApproveCount int64  `json:"approveCount"`
	RejectCount  int64  `json:"rejectCount"`
	VoteCount    int64  `json:"voteCount"`
	TotalVotes   int64  `json:"totalVotes"`
	CreatedBy    string `json:"createdBy"`
	CreatedAt    string `json:"createdAt"`
	Provisional  bool   `json:"provisional,omitempty"`
}

type Vote struct {
	ID           string `json:"id,omitempty"`
	ProposalID   string `json:"proposalId"`
	VoterAddress string `json:"voterAddress"`
	VoteType     string `json:"voteType"`
	VotedAt      string `json:"votedAt"`
	Provisional  bool   `json:"provisional,omitempty"`
}

// User is the identity currently acting through the wallet
type User struct {
	Address   string `json:"address"`
	Connected bool   `json:"isConnected"`
}

// Mapping links a database identifier to a numeric contract identifier
type Mapping struct {
	ExternalID string `json:"externalId"`
	ContractID uint64 `json:"contractId"`
}

// Analytics types

type Stats struct {
	TotalProposals int64            `json:"totalProposals"`
	TotalVotes     int64            `json:"totalVotes"`
	StatusCounts   map[string]int64 `json:"statusCounts"`
	LastVoteAt     string           `json:"lastVoteAt,omitempty"`
	LastVoteAgo    string           `json:"lastVoteAgo,omitempty"`
}

type DistributionEntry struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Votes             int64  `json:"votes"`
	TotalParticipants int64  `json:"totalParticipants"`
}

type ActivityEntry struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}
