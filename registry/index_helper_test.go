package registry_test

import "context"

// mapIndex is an in-memory conflict.Index.
type mapIndex struct {
	names map[string]string
}

func newMapIndex() *mapIndex { return &mapIndex{names: map[string]string{}} }

func (m *mapIndex) Lookup(_ context.Context, name string) (string, bool, error) {
	k, ok := m.names[name]
	return k, ok, nil
}

func (m *mapIndex) Record(_ context.Context, name, key string) error {
	for n, k := range m.names {
		if k == key && n != name {
			delete(m.names, n)
		}
	}
	if cur, ok := m.names[name]; !ok || key < cur {
		m.names[name] = key
	}
	return nil
}

func (m *mapIndex) ForgetKey(_ context.Context, key string) error {
	for n, k := range m.names {
		if k == key {
			delete(m.names, n)
		}
	}
	return nil
}

func (m *mapIndex) ForgetName(_ context.Context, name, key string) error {
	if m.names[name] == key {
		delete(m.names, name)
	}
	return nil
}
