package app

import (
	"time"

	"github.com/dkeye/Nexus/internal/domain"
)

type MeetingInvite struct {
	MeetingID     string    `json:"meetingId"`
	Title         string    `json:"title"`
	Organizer     string    `json:"organizer"`
	ScheduledTime time.Time `json:"scheduledTime"`
}

type MeetingResponse struct {
	MeetingID   string `json:"meetingId"`
	Participant string `json:"participant"`
	// Response is "accepted" or "rejected".
	Response string `json:"response"`
}

type MeetingCancelled struct {
	MeetingID string `json:"meetingId"`
	Title     string `json:"title"`
}

type DocumentShared struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	SharedBy   string `json:"sharedBy"`
	Permission string `json:"permission"`
}

type DocumentSigned struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	SignedBy   string `json:"signedBy"`
}

// Notifications gives the meeting and document services typed entry points
// into the per-account channel.
type Notifications struct {
	Pusher Pusher
}

func (n Notifications) MeetingInvite(participants []domain.AccountID, p MeetingInvite) {
	for _, account := range participants {
		n.Pusher.Notify(account, domain.EventMeetingInvite, p)
	}
}

func (n Notifications) MeetingResponse(organizer domain.AccountID, p MeetingResponse) {
	n.Pusher.Notify(organizer, domain.EventMeetingResponse, p)
}

func (n Notifications) MeetingCancelled(participants []domain.AccountID, p MeetingCancelled) {
	for _, account := range participants {
		n.Pusher.Notify(account, domain.EventMeetingCancelled, p)
	}
}

func (n Notifications) DocumentShared(recipient domain.AccountID, p DocumentShared) {
	n.Pusher.Notify(recipient, domain.EventDocumentShared, p)
}

// DocumentSigned skips the owner signing their own document.
func (n Notifications) DocumentSigned(owner, signer domain.AccountID, p DocumentSigned) {
	if owner == signer {
		return
	}
	n.Pusher.Notify(owner, domain.EventDocumentSigned, p)
}
