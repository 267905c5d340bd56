package chats

import (
	"context"
	"errors"
	"fmt"
	"github.com/awakari/venue-chat/config"
	"github.com/awakari/venue-chat/model/chat"
	"github.com/awakari/venue-chat/service/blocks"
	"github.com/awakari/venue-chat/service/lock"
	"github.com/awakari/venue-chat/service/messages"
	"github.com/awakari/venue-chat/service/notify"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"github.com/segmentio/ksuid"
	"log/slog"
	"sort"
	"strings"
	"time"
)

type Service interface {

	// Create opens a new chat between the members or accepts the pending one with the same members at the same venue.
	Create(ctx context.Context, req chat.Requester, members []chat.Member, venue, text string) (c chat.Chat, err error)

	Read(ctx context.Context, req chat.Requester, id string) (c chat.Chat, err error)

	// List returns the chats where the requester is a member.
	List(ctx context.Context, req chat.Requester, q chat.Query) (page []chat.Chat, err error)

	// PostMessage saves the requester's message and moves the chat to the accepted or exhausted status when due.
	PostMessage(ctx context.Context, req chat.Requester, chatId, text string) (m chat.Message, err error)

	ListMessages(ctx context.Context, req chat.Requester, chatId string, q chat.MessageQuery) (page []chat.Message, err error)

	// Reject closes the chat on behalf of an invited member.
	Reject(ctx context.Context, req chat.Requester, chatId string) (c chat.Chat, err error)
}

type service struct {
	stor      Storage
	msgs      messages.Storage
	blocks    blocks.Registry
	notifier  notify.Dispatcher
	locker    lock.Locker
	cfg       config.ChatConfig
	sanitizer *bluemonday.Policy
	validate  *validator.Validate
	log       *slog.Logger
}

type createRequest struct {
	Venue   string        `validate:"required"`
	Members []chat.Member `validate:"required,min=1,unique=User,dive"`
}

const lockKeyPrefixMembers = "members:"
const lockKeyPrefixChat = "chat:"

// errUnchanged stops the transition without writing when the fresh chat needs no change.
var errUnchanged = errors.New("unchanged")

func NewService(
	stor Storage,
	msgs messages.Storage,
	blocks blocks.Registry,
	notifier notify.Dispatcher,
	locker lock.Locker,
	cfg config.ChatConfig,
	log *slog.Logger,
) Service {
	return service{
		stor:      stor,
		msgs:      msgs,
		blocks:    blocks,
		notifier:  notifier,
		locker:    locker,
		cfg:       cfg,
		sanitizer: bluemonday.StrictPolicy(),
		validate:  validator.New(),
		log:       log,
	}
}

func (svc service) Create(ctx context.Context, req chat.Requester, members []chat.Member, venue, text string) (c chat.Chat, err error) {
	var creator chat.Member
	creator, err = svc.validateCreate(members, venue)
	if err == nil && !req.Admin && !lo.ContainsBy(members, func(m chat.Member) bool { return m.User == req.Id }) {
		err = fmt.Errorf("%w: requester %s is not a member", ErrForbidden, req.Id)
	}
	if err == nil {
		for _, m := range members {
			if m.Creator {
				continue
			}
			err = svc.checkBlocked(ctx, m.User, creator.User)
			if err != nil {
				break
			}
		}
	}
	userIds := lo.Map(members, func(m chat.Member, _ int) string { return m.User })
	var unlock func()
	if err == nil {
		unlock, err = svc.lock(ctx, lockKeyMembers(userIds))
	}
	if err == nil {
		defer unlock()
		c, err = svc.createLocked(ctx, members, userIds, creator, venue, text)
	}
	return
}

func (svc service) validateCreate(members []chat.Member, venue string) (creator chat.Member, err error) {
	err = svc.validate.Struct(createRequest{
		Venue:   venue,
		Members: members,
	})
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInvalid, err)
		return
	}
	creators := lo.Filter(members, func(m chat.Member, _ int) bool { return m.Creator })
	switch len(creators) {
	case 1:
		creator = creators[0]
	case 0:
		err = fmt.Errorf("%w: no creator among the members", ErrInvalid)
	default:
		err = fmt.Errorf("%w: %d creators among the members", ErrInvalid, len(creators))
	}
	return
}

func (svc service) createLocked(
	ctx context.Context, members []chat.Member, userIds []string, creator chat.Member, venue, text string,
) (c chat.Chat, err error) {
	var recent chat.Chat
	recent, err = svc.stor.FindMostRecent(ctx, userIds, venue)
	switch {
	case err == nil && recent.Status == chat.StatusCreated:
		c, err = svc.transition(ctx, recent, func(fresh *chat.Chat) (err error) {
			switch fresh.Status {
			case chat.StatusCreated:
				fresh.Status = chat.StatusAccepted
			default:
				err = errUnchanged
			}
			return
		})
		return
	case errors.Is(err, ErrNotFound):
		err = nil
	}
	if err == nil {
		recent, err = svc.stor.FindMostRecent(ctx, userIds, "")
		switch {
		case err == nil && time.Since(recent.CreatedAt) < svc.cfg.CoolDown:
			err = fmt.Errorf(
				"%w: chat %s with the same members was created at %s",
				ErrCooldown, recent.Id, recent.CreatedAt.Format(time.RFC3339),
			)
		case errors.Is(err, ErrNotFound):
			err = nil
		}
	}
	if err == nil {
		now := time.Now().UTC()
		c = chat.Chat{
			Id:    ksuid.New().String(),
			Venue: venue,
			Members: lo.Map(members, func(m chat.Member, _ int) chat.Member {
				return chat.Member{
					User:    m.User,
					Creator: m.Creator,
				}
			}),
			Status:    chat.StatusCreated,
			CreatedAt: now,
			UpdatedAt: now,
		}
		err = svc.stor.Create(ctx, c)
	}
	if err == nil {
		metricTransitions.WithLabelValues(chat.StatusCreated.String()).Inc()
		c = svc.postInitialMessage(ctx, c, creator.User, text)
		svc.notifier.Notify(ctx, notify.Notification{
			Kind:       notify.KindChatCreated,
			Chat:       c.Id,
			Venue:      c.Venue,
			Sender:     creator.User,
			Recipients: lo.Without(userIds, creator.User),
			Text:       svc.sanitizer.Sanitize(text),
		})
	}
	return
}

// postInitialMessage saves the creator's first message. The chat is already created, so the failures are only logged.
func (svc service) postInitialMessage(ctx context.Context, c chat.Chat, creatorId, text string) chat.Chat {
	m := chat.Message{
		Id:        ksuid.New().String(),
		Chat:      c.Id,
		User:      creatorId,
		Message:   svc.sanitizer.Sanitize(text),
		CreatedAt: time.Now().UTC(),
	}
	err := svc.msgs.Create(ctx, m)
	if err == nil {
		var updated chat.Chat
		updated, err = svc.transition(ctx, c, func(fresh *chat.Chat) (err error) {
			fresh.SetLastMessageSeen(creatorId, m.Id)
			return
		})
		if err == nil {
			c = updated
		}
	}
	if err != nil {
		svc.log.Warn(fmt.Sprintf("Failed to save the initial message of the chat %s, cause: %s", c.Id, err))
	}
	return c
}

func (svc service) Read(ctx context.Context, req chat.Requester, id string) (c chat.Chat, err error) {
	c, err = svc.stor.Read(ctx, id)
	if err == nil {
		err = authorize(c, req)
	}
	if err != nil {
		c = chat.Chat{}
	}
	return
}

func (svc service) List(ctx context.Context, req chat.Requester, q chat.Query) (page []chat.Chat, err error) {
	q.Member = req.Id
	q.Limit = chat.Limit(q.Limit)
	page, err = svc.stor.List(ctx, q)
	return
}

func (svc service) PostMessage(ctx context.Context, req chat.Requester, chatId, text string) (m chat.Message, err error) {
	var unlock func()
	unlock, err = svc.lock(ctx, lockKeyPrefixChat+chatId)
	if err != nil {
		return
	}
	defer unlock()
	var c chat.Chat
	c, err = svc.stor.Read(ctx, chatId)
	if err == nil {
		err = authorize(c, req)
	}
	sender := req.Id
	if err == nil {
		for _, member := range c.Members {
			if member.Creator || member.User == sender {
				continue
			}
			err = svc.checkBlocked(ctx, member.User, sender)
			if err != nil {
				break
			}
		}
	}
	if err == nil {
		switch {
		case c.Status.Closed():
			err = fmt.Errorf("%w: chat %s is %s", ErrExhausted, c.Id, c.Status)
		case c.Status == chat.StatusCreated && c.IsCreator(sender):
			err = fmt.Errorf("%w: chat %s awaits the reply", ErrNotYetAccepted, c.Id)
		}
	}
	var count int64
	if err == nil {
		count, err = svc.msgs.CountByUser(ctx, c.Id, sender)
		switch {
		case err != nil:
			err = fmt.Errorf("%w: %s", ErrInternal, err)
		case count >= int64(svc.cfg.MaxMessages):
			err = fmt.Errorf("%w: user %s has posted %d messages", ErrExhausted, sender, count)
		}
	}
	if err == nil {
		m = chat.Message{
			Id:        ksuid.New().String(),
			Chat:      c.Id,
			User:      sender,
			Message:   svc.sanitizer.Sanitize(text),
			CreatedAt: time.Now().UTC(),
		}
		err = svc.msgs.Create(ctx, m)
		if err != nil {
			err = fmt.Errorf("%w: %s", ErrInternal, err)
		}
	}
	if err == nil {
		c, err = svc.transition(ctx, c, func(fresh *chat.Chat) (err error) {
			if fresh.Status.Closed() {
				return fmt.Errorf("%w: chat %s is %s", ErrExhausted, fresh.Id, fresh.Status)
			}
			fresh.SetLastMessageSeen(sender, m.Id)
			if fresh.Status == chat.StatusCreated {
				fresh.Status = chat.StatusAccepted
			}
			var total int64
			total, err = svc.msgs.CountAll(ctx, fresh.Id)
			switch {
			case err != nil:
				err = fmt.Errorf("%w: %s", ErrInternal, err)
			case total >= 2*int64(svc.cfg.MaxMessages)-1:
				fresh.Status = chat.StatusExhausted
			}
			return
		})
		if err != nil {
			svc.discardMessage(ctx, m)
		}
	}
	if err == nil {
		svc.notifier.Notify(ctx, notify.Notification{
			Kind:       notify.KindMessageCreated,
			Chat:       c.Id,
			Venue:      c.Venue,
			Sender:     sender,
			Recipients: lo.Without(c.UserIds(), sender),
			Message:    m.Id,
			Text:       m.Message,
		})
	} else {
		m = chat.Message{}
	}
	return
}

// discardMessage removes the saved message when the chat could not be updated for it,
// so the failed post doesn't count toward the quota.
func (svc service) discardMessage(ctx context.Context, m chat.Message) {
	err := svc.msgs.Delete(context.WithoutCancel(ctx), m.Chat, m.Id)
	if err != nil {
		svc.log.Error(fmt.Sprintf("Failed to discard the message %s of the chat %s, cause: %s", m.Id, m.Chat, err))
	}
}

func (svc service) ListMessages(ctx context.Context, req chat.Requester, chatId string, q chat.MessageQuery) (page []chat.Message, err error) {
	var c chat.Chat
	c, err = svc.stor.Read(ctx, chatId)
	if err == nil {
		err = authorize(c, req)
	}
	if err == nil {
		q.Limit = chat.Limit(q.Limit)
		page, err = svc.msgs.List(ctx, chatId, q)
		if err != nil {
			err = fmt.Errorf("%w: %s", ErrInternal, err)
		}
	}
	return
}

func (svc service) Reject(ctx context.Context, req chat.Requester, chatId string) (c chat.Chat, err error) {
	var unlock func()
	unlock, err = svc.lock(ctx, lockKeyPrefixChat+chatId)
	if err != nil {
		return
	}
	defer unlock()
	c, err = svc.stor.Read(ctx, chatId)
	if err == nil {
		err = authorize(c, req)
	}
	if err == nil && !req.Admin && c.IsCreator(req.Id) {
		err = fmt.Errorf("%w: creator can not reject the own chat %s", ErrForbidden, c.Id)
	}
	if err == nil {
		if c.Status == chat.StatusRejected {
			return
		}
		c, err = svc.transition(ctx, c, func(fresh *chat.Chat) (err error) {
			switch fresh.Status {
			case chat.StatusRejected:
				err = errUnchanged
			default:
				fresh.Status = chat.StatusRejected
			}
			return
		})
	}
	if err == nil {
		if creator, ok := c.Creator(); ok {
			svc.notifier.Notify(ctx, notify.Notification{
				Kind:       notify.KindChatRejected,
				Chat:       c.Id,
				Venue:      c.Venue,
				Sender:     req.Id,
				Recipients: []string{creator.User},
			})
		}
	} else {
		c = chat.Chat{}
	}
	return
}

// transition applies the change to the chat using the conditional update. On the version conflict
// the chat is read again and the change is re-evaluated against the fresh state.
func (svc service) transition(ctx context.Context, c chat.Chat, change func(fresh *chat.Chat) error) (result chat.Chat, err error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = svc.cfg.Backoff.Init
	b.MaxElapsedTime = svc.cfg.Backoff.MaxElapsed
	fresh := copyChat(c)
	var stale bool
	err = backoff.Retry(
		func() (err error) {
			if stale {
				fresh, err = svc.stor.Read(ctx, c.Id)
				if err != nil {
					return backoff.Permanent(err)
				}
			}
			next := copyChat(fresh)
			err = change(&next)
			switch {
			case errors.Is(err, errUnchanged):
				result = fresh
				return nil
			case err != nil:
				return backoff.Permanent(err)
			}
			next.UpdatedAt = time.Now().UTC()
			err = svc.stor.Update(ctx, next)
			switch {
			case err == nil:
				next.Version++
				result = next
				if next.Status != fresh.Status {
					metricTransitions.WithLabelValues(next.Status.String()).Inc()
				}
			case errors.Is(err, ErrConflict):
				stale = true
			default:
				err = backoff.Permanent(err)
			}
			return
		},
		backoff.WithContext(b, ctx),
	)
	return
}

func (svc service) checkBlocked(ctx context.Context, blocker, blocked string) (err error) {
	var ok bool
	ok, err = svc.blocks.IsBlocked(ctx, blocker, blocked)
	switch {
	case err != nil:
		err = fmt.Errorf("%w: %s", ErrInternal, err)
	case ok:
		err = fmt.Errorf("%w: %s has blocked %s", ErrBlocked, blocker, blocked)
	}
	return
}

func (svc service) lock(ctx context.Context, key string) (unlock func(), err error) {
	unlock, err = svc.locker.Lock(ctx, key)
	if err != nil {
		err = fmt.Errorf("%w: %s", ErrInternal, err)
	}
	return
}

func authorize(c chat.Chat, req chat.Requester) (err error) {
	if !req.Admin && !c.IsMember(req.Id) {
		err = fmt.Errorf("%w: %s is not a member of the chat %s", ErrForbidden, req.Id, c.Id)
	}
	return
}

func lockKeyMembers(userIds []string) string {
	sorted := append([]string{}, userIds...)
	sort.Strings(sorted)
	return lockKeyPrefixMembers + strings.Join(sorted, ",")
}
