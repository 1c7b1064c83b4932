package model

// Audit action constants
const (
	AuditActionRegister        = "user.register"
	AuditActionLogin           = "user.login"
	AuditActionLoginFailed     = "user.login_failed"
	AuditActionLogout          = "user.logout"
	AuditActionProfileUpdate   = "user.profile_update"
	AuditActionPasswordChange  = "user.password_change"
	AuditActionDeactivate      = "user.deactivate"
	AuditActionSettingsUpdate  = "user.settings_update"
	AuditActionOrderPlaced     = "order.placed"
	AuditActionOrderCancelled  = "order.cancelled"
	AuditActionOrderReordered  = "order.reordered"
	AuditActionContactReceived = "contact.received"
)

// Audit resource types
const (
	ResourceUser    = "user"
	ResourceOrder   = "order"
	ResourceContact = "contact_message"
)
