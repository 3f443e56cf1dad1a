package rc

import (
	"github.com/winston-ci/buildwatch/fetcher"
)

// TokenProvider serves a saved target's token as fetch credentials. A file
// cannot prompt anybody, so interactive challenges come back empty and
// interactive acquisition stays with the host.
type TokenProvider struct {
	target TargetProps
}

func NewTokenProvider(target TargetProps) *TokenProvider {
	return &TokenProvider{target: target}
}

func (p *TokenProvider) Credentials(interactive bool) *fetcher.Credentials {
	if interactive {
		return nil
	}

	if p.target.Token == nil {
		return nil
	}

	return &fetcher.Credentials{
		Type:  p.target.Token.Type,
		Value: p.target.Token.Value,
	}
}
