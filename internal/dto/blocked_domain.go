package dto

type CreateBlockedDomainRequest struct {
	Domain string `json:"domain" binding:"required,hostname_rfc1123" msg:"error.domain_invalid"`
}
