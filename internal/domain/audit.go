package domain

import (
	"strings"
	"time"
)

// AuditAction is the closed set of audited event kinds.
type AuditAction string

const (
	AuditLogin          AuditAction = "login"
	AuditLogout         AuditAction = "logout"
	AuditLoginFailed    AuditAction = "login_failed"
	AuditAccountLocked  AuditAction = "account_locked"
	AuditRegister       AuditAction = "register"
	AuditPasswordReset  AuditAction = "password_reset"
	AuditPurchaseTicket AuditAction = "purchase_ticket"
	AuditRefund         AuditAction = "refund"
	AuditAddFunds       AuditAction = "add_funds"
	AuditWalletUpdate   AuditAction = "wallet_update"

	AuditCreateEvent    AuditAction = "create_event"
	AuditEditEvent      AuditAction = "edit_event"
	AuditDeleteEvent    AuditAction = "delete_event"
	AuditPublishEvent   AuditAction = "publish_event"
	AuditUnpublishEvent AuditAction = "unpublish_event"

	AuditCreateCourse    AuditAction = "create_course"
	AuditEditCourse      AuditAction = "edit_course"
	AuditDeleteCourse    AuditAction = "delete_course"
	AuditPublishCourse   AuditAction = "publish_course"
	AuditUnpublishCourse AuditAction = "unpublish_course"

	AuditCreateNews    AuditAction = "create_news"
	AuditEditNews      AuditAction = "edit_news"
	AuditDeleteNews    AuditAction = "delete_news"
	AuditPublishNews   AuditAction = "publish_news"
	AuditUnpublishNews AuditAction = "unpublish_news"

	AuditEditArtist          AuditAction = "edit_artist"
	AuditEditHomepage        AuditAction = "edit_homepage"
	AuditUploadMedia         AuditAction = "upload_media"
	AuditDeleteMedia         AuditAction = "delete_media"
	AuditUpgradeSubscription AuditAction = "upgrade_subscription"
	AuditRoleChange          AuditAction = "role_change"
	AuditSuspendUser         AuditAction = "suspend_user"
	AuditUnsuspendUser       AuditAction = "unsuspend_user"
	AuditSessionTimeout      AuditAction = "session_timeout"
)

var auditActions = map[AuditAction]struct{}{
	AuditLogin: {}, AuditLogout: {}, AuditLoginFailed: {}, AuditAccountLocked: {},
	AuditRegister: {}, AuditPasswordReset: {}, AuditPurchaseTicket: {}, AuditRefund: {},
	AuditAddFunds: {}, AuditWalletUpdate: {},
	AuditCreateEvent: {}, AuditEditEvent: {}, AuditDeleteEvent: {}, AuditPublishEvent: {}, AuditUnpublishEvent: {},
	AuditCreateCourse: {}, AuditEditCourse: {}, AuditDeleteCourse: {}, AuditPublishCourse: {}, AuditUnpublishCourse: {},
	AuditCreateNews: {}, AuditEditNews: {}, AuditDeleteNews: {}, AuditPublishNews: {}, AuditUnpublishNews: {},
	AuditEditArtist: {}, AuditEditHomepage: {}, AuditUploadMedia: {}, AuditDeleteMedia: {},
	AuditUpgradeSubscription: {}, AuditRoleChange: {}, AuditSuspendUser: {}, AuditUnsuspendUser: {},
	AuditSessionTimeout: {},
}

func (a AuditAction) String() string { return string(a) }

func (a AuditAction) IsValid() bool {
	_, ok := auditActions[a]
	return ok
}

// AuditLogEntry is one immutable audit record. Role is the actor's role at
// the time of the action.
type AuditLogEntry struct {
	ID             string
	UserID         string
	UserName       string
	Role           Role
	Action         AuditAction
	TargetResource string
	PreviousValue  *string
	NewValue       *string
	IP             *string
	Timestamp      time.Time
}

// Clone returns a copy of e that shares no pointers with it.
func (e AuditLogEntry) Clone() AuditLogEntry {
	e.PreviousValue = cloneString(e.PreviousValue)
	e.NewValue = cloneString(e.NewValue)
	e.IP = cloneString(e.IP)
	return e
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NewAuditEntry is an audit record before the log assigns ID and timestamp.
type NewAuditEntry struct {
	UserID         string
	UserName       string
	Role           Role
	Action         AuditAction
	TargetResource string
	PreviousValue  *string
	NewValue       *string
	IP             *string
}

// AuditFilter narrows an audit listing. Zero values match everything.
type AuditFilter struct {
	UserID       string
	Action       AuditAction
	TargetPrefix string
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}

// Matches reports whether e passes every set criterion of f.
func (f AuditFilter) Matches(e AuditLogEntry) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.TargetPrefix != "" && !strings.HasPrefix(e.TargetResource, f.TargetPrefix) {
		return false
	}
	if f.Since != nil && e.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && e.Timestamp.After(*f.Until) {
		return false
	}
	return true
}
