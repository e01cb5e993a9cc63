package secrets

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"

	"github.com/KooshaPari/vibeproxy/internal/logging"
)

// freedesktop Secret Service names, per the D-Bus Secrets API specification.
const (
	secretsBusName = "org.freedesktop.secrets"
	servicePath    = "/org/freedesktop/secrets"

	serviceIface    = "org.freedesktop.Secret.Service"
	collectionIface = "org.freedesktop.Secret.Collection"
	itemIface       = "org.freedesktop.Secret.Item"
	promptIface     = "org.freedesktop.Secret.Prompt"

	// noPrompt/noObject is how the service signals "nothing here".
	nullPath = dbus.ObjectPath("/")
)

// dbusSecret is the wire representation of a secret payload (oayays).
type dbusSecret struct {
	Session     dbus.ObjectPath
	Parameters  []byte
	Value       []byte
	ContentType string
}

// service is a session with the system secret service. The session and the
// collection handle are long-lived and shared by all store operations; the
// service itself guarantees whatever cross-process consistency exists.
type service struct {
	conn    *dbus.Conn
	session dbus.ObjectPath
	log     zerolog.Logger
}

// connectService opens the session bus and negotiates a plain-transfer
// session with the secret service.
func connectService() (*service, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	obj := conn.Object(secretsBusName, servicePath)

	var (
		output  dbus.Variant
		session dbus.ObjectPath
	)

	err = obj.Call(serviceIface+".OpenSession", 0, "plain", dbus.MakeVariant("")).
		Store(&output, &session)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open session: %v", ErrConnection, err)
	}

	svc := &service{
		conn:    conn,
		session: session,
		log:     logging.Component("secrets"),
	}

	svc.log.Info().Msg("connected to secret service")

	return svc, nil
}

// defaultCollection resolves the service's default collection and unlocks it
// if it is currently locked.
func (s *service) defaultCollection() (*dbusCollection, error) {
	obj := s.conn.Object(secretsBusName, servicePath)

	var path dbus.ObjectPath
	if err := obj.Call(serviceIface+".ReadAlias", 0, "default").Store(&path); err != nil {
		return nil, fmt.Errorf("%w: failed to read default collection alias: %v", ErrConnection, err)
	}

	if path == nullPath {
		return nil, fmt.Errorf("%w: no default collection", ErrConnection)
	}

	collection := &dbusCollection{svc: s, path: path}

	locked, err := collection.locked()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnection, err)
	}

	if locked {
		if err := s.unlock(path); err != nil {
			return nil, err
		}
	}

	return collection, nil
}

// unlock asks the service to unlock the given object, driving the unlock
// prompt when the service requires user interaction.
func (s *service) unlock(path dbus.ObjectPath) error {
	obj := s.conn.Object(secretsBusName, servicePath)

	var (
		unlocked []dbus.ObjectPath
		prompt   dbus.ObjectPath
	)

	err := obj.Call(serviceIface+".Unlock", 0, []dbus.ObjectPath{path}).
		Store(&unlocked, &prompt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnlock, err)
	}

	if prompt == nullPath {
		return nil
	}

	return s.completePrompt(prompt)
}

// completePrompt runs a service prompt and waits for its Completed signal.
// A dismissed prompt means the user declined the unlock.
func (s *service) completePrompt(prompt dbus.ObjectPath) error {
	if err := s.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(prompt),
		dbus.WithMatchInterface(promptIface),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrUnlock, err)
	}

	defer s.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(prompt),
		dbus.WithMatchInterface(promptIface),
	)

	signals := make(chan *dbus.Signal, 1)
	s.conn.Signal(signals)
	defer s.conn.RemoveSignal(signals)

	promptObj := s.conn.Object(secretsBusName, prompt)
	if err := promptObj.Call(promptIface+".Prompt", 0, "").Err; err != nil {
		return fmt.Errorf("%w: %v", ErrUnlock, err)
	}

	for sig := range signals {
		if sig.Path != prompt || sig.Name != promptIface+".Completed" {
			continue
		}

		if len(sig.Body) > 0 {
			if dismissed, ok := sig.Body[0].(bool); ok && dismissed {
				return fmt.Errorf("%w: prompt dismissed", ErrUnlock)
			}
		}

		s.log.Debug().Msg("collection unlocked")

		return nil
	}

	return fmt.Errorf("%w: signal channel closed", ErrUnlock)
}
