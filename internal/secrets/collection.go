package secrets

import (
	"github.com/godbus/dbus/v5"
)

// dbusCollection implements Collection over a secret service collection
// object. Items are addressed only by attribute search, never by path
// bookkeeping on our side.
type dbusCollection struct {
	svc  *service
	path dbus.ObjectPath
}

func (c *dbusCollection) object() dbus.BusObject {
	return c.svc.conn.Object(secretsBusName, c.path)
}

func (c *dbusCollection) locked() (bool, error) {
	v, err := c.object().GetProperty(collectionIface + ".Locked")
	if err != nil {
		return false, err
	}

	locked, _ := v.Value().(bool)

	return locked, nil
}

// Search returns the collection's items matching the attributes exactly.
func (c *dbusCollection) Search(attrs map[string]string) ([]Item, error) {
	var paths []dbus.ObjectPath
	err := c.object().Call(collectionIface+".SearchItems", 0, attrs).Store(&paths)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(paths))
	for _, p := range paths {
		items = append(items, &dbusItem{svc: c.svc, path: p})
	}

	return items, nil
}

// Create adds an item to the collection. Prompts are not expected here: the
// collection was unlocked at connect time, so a returned prompt path is
// ignored rather than driven.
func (c *dbusCollection) Create(label string, attrs map[string]string, value []byte, contentType string, replace bool) error {
	properties := map[string]dbus.Variant{
		itemIface + ".Label":      dbus.MakeVariant(label),
		itemIface + ".Attributes": dbus.MakeVariant(attrs),
	}

	secret := dbusSecret{
		Session:     c.svc.session,
		Value:       value,
		ContentType: contentType,
	}

	var (
		item   dbus.ObjectPath
		prompt dbus.ObjectPath
	)

	return c.object().Call(collectionIface+".CreateItem", 0, properties, secret, replace).
		Store(&item, &prompt)
}

// dbusItem implements Item over a secret service item object.
type dbusItem struct {
	svc  *service
	path dbus.ObjectPath
}

func (i *dbusItem) object() dbus.BusObject {
	return i.svc.conn.Object(secretsBusName, i.path)
}

func (i *dbusItem) Value() ([]byte, error) {
	var secret dbusSecret
	err := i.object().Call(itemIface+".GetSecret", 0, i.svc.session).Store(&secret)
	if err != nil {
		return nil, err
	}

	return secret.Value, nil
}

func (i *dbusItem) SetValue(value []byte, contentType string) error {
	secret := dbusSecret{
		Session:     i.svc.session,
		Value:       value,
		ContentType: contentType,
	}

	return i.object().Call(itemIface+".SetSecret", 0, secret).Err
}

func (i *dbusItem) Delete() error {
	var prompt dbus.ObjectPath
	return i.object().Call(itemIface+".Delete", 0).Store(&prompt)
}

func (i *dbusItem) Attributes() (map[string]string, error) {
	v, err := i.object().GetProperty(itemIface + ".Attributes")
	if err != nil {
		return nil, err
	}

	attrs, ok := v.Value().(map[string]string)
	if !ok {
		return map[string]string{}, nil
	}

	return attrs, nil
}
