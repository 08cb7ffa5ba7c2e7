// Package scrape builds the configured source connectors.
package scrape

import (
	"fmt"

	"jobsniper/internal/config"
	"jobsniper/internal/scrape/ats"
	"jobsniper/internal/scrape/email"
	"jobsniper/internal/scrape/feed"
	"jobsniper/internal/scrape/html"
	"jobsniper/internal/scrape/jsonapi"
	"jobsniper/internal/scrape/types"
	"jobsniper/internal/scrape/util"
)

// Deps are the shared pieces connectors are built from.
type Deps struct {
	Client *util.Client

	// Boards is shared by every ats source so a Cloudflare-blocked
	// Workday host stays skipped for the whole run.
	Boards ats.Registry

	// IMAPPassword resolves the password of an email source.
	IMAPPassword func(src config.Source) string
}

func NewDeps(cfg config.Config, imapPassword func(config.Source) string) Deps {
	c := util.NewClient(cfg.Fetch)
	return Deps{Client: c, Boards: ats.DefaultRegistry(c), IMAPPassword: imapPassword}
}

// Build returns one Fetcher per enabled source, in configured order.
func Build(cfg config.Config, d Deps) ([]types.Fetcher, error) {
	var out []types.Fetcher
	for _, src := range cfg.EnabledSources() {
		f, err := New(src, d)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// New builds the connector for one source.
func New(src config.Source, d Deps) (types.Fetcher, error) {
	switch src.Kind {
	case config.KindRSS:
		return feed.New(src, d.Client), nil
	case config.KindTheMuse:
		return jsonapi.NewTheMuse(src, d.Client), nil
	case config.KindRemotive:
		return jsonapi.NewRemotive(src, d.Client), nil
	case config.KindHTML:
		return html.New(src, d.Client), nil
	case config.KindATS:
		return ats.New(src, d.Boards), nil
	case config.KindEmail:
		pw := ""
		if d.IMAPPassword != nil {
			pw = d.IMAPPassword(src)
		}
		return email.New(src, email.IMAPDialer(email.AccountFromSource(src, pw))), nil
	default:
		return nil, fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
	}
}
