package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

var (
	nowFunc = time.Now // mockable

	ErrNoSession = errors.New("no active session")
)

// Context is the single active session of a client, passed explicitly to page controllers.
// Lifecycle: Init (on start), Update (on login), Clear (on logout or 401).
type Context struct {
	mu      sync.RWMutex
	store   Store
	current Session
}

func NewContext(store Store) *Context {
	return &Context{store: store}
}

// Init loads the persisted session. A missing, partial, corrupted or expired session
// is cleared and leaves the context empty.
func (c *Context) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.load()
	if err != nil && errors.Cause(err) != errCorrupt {
		return err
	}
	if err != nil || sess.Token == "" || sess.Identity.ID == 0 || tokenExpired(sess.Token) {
		c.current = Session{}
		return errors.Wrap(c.store.Delete(AllKeys...), "clearing stale session")
	}
	c.current = sess
	return nil
}

var errCorrupt = errors.New("corrupted session identity")

func (c *Context) load() (Session, error) {
	token, _, err := c.store.Get(KeyToken)
	if err != nil {
		return Session{}, errors.Wrap(err, "reading session token")
	}
	userType, _, err := c.store.Get(KeyUserType)
	if err != nil {
		return Session{}, errors.Wrap(err, "reading session role")
	}

	role := ParseRole(userType)
	infoKey := KeyUserInfo
	if role.IsAdmin() {
		infoKey = KeyAdminInfo
	}

	raw, ok, err := c.store.Get(infoKey)
	if err != nil {
		return Session{}, errors.Wrap(err, "reading session identity")
	}
	sess := Session{Token: token, Role: role}
	if !ok || raw == "" {
		return sess, nil
	}
	if err := json.Unmarshal([]byte(raw), &sess.Identity); err != nil {
		return Session{}, errCorrupt
	}
	return sess, nil
}

// Update persists sess as the active session, replacing any previous one.
func (c *Context) Update(sess Session) error {
	if sess.Token == "" || sess.Identity.ID == 0 {
		return errors.New("session: token and identity are required")
	}
	info, err := json.Marshal(sess.Identity)
	if err != nil {
		return errors.Wrap(err, "encoding identity")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Delete(AllKeys...); err != nil {
		return errors.Wrap(err, "clearing previous session")
	}
	infoKey := KeyUserInfo
	if sess.Role.IsAdmin() {
		infoKey = KeyAdminInfo
	}
	for _, kv := range [][2]string{
		{KeyToken, sess.Token},
		{KeyUserType, string(sess.Role)},
		{infoKey, string(info)},
	} {
		if err := c.store.Set(kv[0], kv[1]); err != nil {
			return errors.Wrapf(err, "persisting %s", kv[0])
		}
	}
	c.current = sess
	return nil
}

// Clear forgets the session in memory first, then removes every persisted key.
func (c *Context) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = Session{}
	return errors.Wrap(c.store.Delete(AllKeys...), "clearing session")
}

func (c *Context) Current() (Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current.Token == "" || c.current.Identity.ID == 0 {
		return Session{}, ErrNoSession
	}
	return c.current, nil
}

// Token returns the bearer token of the active session, or "".
func (c *Context) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Token
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens never expire client-side.
func tokenExpired(token string) bool {
	claims := new(jwt.StandardClaims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return false
	}
	if claims.ExpiresAt == 0 {
		return false
	}
	return !claims.VerifyExpiresAt(nowFunc().Unix(), true)
}
