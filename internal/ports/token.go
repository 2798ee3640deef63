package ports

import "context"

type TokenIssuer interface {
	IssueToken(ctx context.Context) (token, region string, err error)
}

// TokenExchanger trades a subscription key for a short-lived token.
type TokenExchanger interface {
	Exchange(ctx context.Context, key, region string) (string, error)
}
