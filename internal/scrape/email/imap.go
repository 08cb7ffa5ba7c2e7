package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// Message is one alert email. Raw holds the full RFC822 bytes, fetched with
// BODY.PEEK[] so fetching does not set \Seen.
type Message struct {
	UID     imap.UID
	Subject string
	Raw     []byte
}

// Mailbox is the part of an IMAP session the connector needs.
type Mailbox interface {
	Unseen(ctx context.Context, limit int) ([]Message, error)
	MarkSeen(ctx context.Context, uids []imap.UID) error
	Close() error
}

// Dialer opens a logged-in mailbox.
type Dialer func(ctx context.Context) (Mailbox, error)

// Account holds IMAP connection settings.
type Account struct {
	Host     string
	Port     string
	Username string
	Password string
	Mailbox  string
	MaxAge   time.Duration
}

func (a Account) addr() string { return net.JoinHostPort(a.Host, a.Port) }

// IMAPDialer dials acct over TLS and selects its mailbox.
func IMAPDialer(acct Account) Dialer {
	return func(ctx context.Context) (Mailbox, error) {
		if acct.Host == "" {
			return nil, errors.New("imap host is required")
		}
		if acct.Username == "" || acct.Password == "" {
			return nil, errors.New("imap username/password is required")
		}

		c, err := imapclient.DialTLS(acct.addr(), &imapclient.Options{
			TLSConfig: &tls.Config{MinVersion: tls.VersionTLS12, ServerName: acct.Host},
		})
		if err != nil {
			return nil, fmt.Errorf("imap dial tls: %w", err)
		}
		if err := c.Login(acct.Username, acct.Password).Wait(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("imap login: %w", err)
		}
		if _, err := c.Select(acct.Mailbox, nil).Wait(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("imap select %q: %w", acct.Mailbox, err)
		}
		return &imapMailbox{c: c, maxAge: acct.MaxAge}, nil
	}
}

type imapMailbox struct {
	c      *imapclient.Client
	maxAge time.Duration
}

// Unseen returns up to limit unseen messages, newest first.
func (m *imapMailbox) Unseen(ctx context.Context, limit int) ([]Message, error) {
	criteria := &imap.SearchCriteria{NotFlag: []imap.Flag{imap.FlagSeen}}
	if m.maxAge > 0 {
		criteria.Since = time.Now().Add(-m.maxAge)
	}
	searchData, err := m.c.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("imap uid search unseen: %w", err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	for i, j := 0, len(uids)-1; i < j; i, j = i+1, j-1 {
		uids[i], uids[j] = uids[j], uids[i]
	}
	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	bodyAll := &imap.FetchItemBodySection{Peek: true}
	fetchCmd := m.c.Fetch(imap.UIDSetNum(uids...), &imap.FetchOptions{
		UID:         true,
		Envelope:    true,
		BodySection: []*imap.FetchItemBodySection{bodyAll},
	})
	defer func() { _ = fetchCmd.Close() }()

	out := make([]Message, 0, len(uids))
	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		msgData := fetchCmd.Next()
		if msgData == nil {
			break
		}
		buf, err := msgData.Collect()
		if err != nil {
			return out, fmt.Errorf("imap fetch collect: %w", err)
		}
		msg := Message{UID: buf.UID, Raw: buf.FindBodySection(bodyAll)}
		if buf.Envelope != nil {
			msg.Subject = buf.Envelope.Subject
		}
		out = append(out, msg)
	}
	if err := fetchCmd.Close(); err != nil {
		return out, fmt.Errorf("imap fetch close: %w", err)
	}
	return out, nil
}

func (m *imapMailbox) MarkSeen(_ context.Context, uids []imap.UID) error {
	if len(uids) == 0 {
		return nil
	}
	cmd := m.c.Store(imap.UIDSetNum(uids...), &imap.StoreFlags{
		Op:     imap.StoreFlagsAdd,
		Silent: true,
		Flags:  []imap.Flag{imap.FlagSeen},
	}, nil)
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("imap store add seen: %w", err)
	}
	return nil
}

func (m *imapMailbox) Close() error {
	if err := m.c.Logout().Wait(); err != nil {
		log.Printf("[email] imap logout: %v", err)
	}
	return m.c.Close()
}
