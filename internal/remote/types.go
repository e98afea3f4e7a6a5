// ABOUTME: Wire types for the remote configuration service
// ABOUTME: Defines TenantConfiguration and KnowledgeBaseRecord JSON shapes

package remote

// TenantConfiguration is the authoritative per-tenant agent configuration.
// It is always written wholesale (full replace, never a patch).
type TenantConfiguration struct {
	TenantID     string             `json:"tenant_id,omitempty"`
	SystemPrompt string             `json:"system_prompt"`
	Workflows    []WorkflowWebhook  `json:"workflows"`
	CallReasons  []string           `json:"call_reasons"`
	CallOutcomes []string           `json:"call_outcomes"`
	ReportFields []string           `json:"report_fields"`
	Telephony    TelephonySettings  `json:"telephony"`
}

// WorkflowWebhook describes a workflow the voice agent may trigger via webhook.
type WorkflowWebhook struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// TelephonySettings holds the tenant's phone routing fields.
type TelephonySettings struct {
	PhoneNumber      string `json:"phone_number"`
	ForwardingNumber string `json:"forwarding_number,omitempty"`
	TransferContact  string `json:"transfer_contact,omitempty"`
	TransferNumber   string `json:"transfer_number,omitempty"`
}

// KnowledgeBaseRecord is one named block of reference content a voice agent
// may be instructed to query. A record without an ID has never been persisted;
// once the server assigns an ID it is immutable for the record's lifetime.
type KnowledgeBaseRecord struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content"`
	FillerText  string `json:"filler_text,omitempty"`
}

// Persisted reports whether the record carries a server-assigned ID.
func (r *KnowledgeBaseRecord) Persisted() bool {
	return r.ID != ""
}
