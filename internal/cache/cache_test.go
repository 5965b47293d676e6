package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OCAP2/chase/pkg/core"
)

func TestEntityCache_NewEntityCache(t *testing.T) {
	cache := NewEntityCache()

	require.NotNil(t, cache)
	assert.NotNil(t, cache.Vehicles)
	assert.NotNil(t, cache.Creatures)
	assert.Len(t, cache.Vehicles, 0)
	assert.Len(t, cache.Creatures, 0)
}

func TestEntityCache_AddAndGetVehicle(t *testing.T) {
	cache := NewEntityCache()

	cache.AddVehicle(core.Vehicle{ID: "v1", Name: "War Rig", HP: 80})

	got, ok := cache.GetVehicle("v1")
	require.True(t, ok, "expected to find vehicle v1")
	assert.Equal(t, "War Rig", got.Name)
	assert.Equal(t, 80, got.HP)

	_, ok = cache.GetVehicle("missing")
	assert.False(t, ok)
}

func TestEntityCache_AddAndGetCreature(t *testing.T) {
	cache := NewEntityCache()

	cache.AddCreature(core.Creature{ID: "c1", Name: "Raider", Statblock: core.Statblock{Speed: core.CreatureSpeed{Walk: 30}}})

	got, ok := cache.GetCreature("c1")
	require.True(t, ok)
	assert.Equal(t, "Raider", got.Name)
	assert.Equal(t, 30.0, got.EffectiveSpeed())

	_, ok = cache.GetCreature("missing")
	assert.False(t, ok)
}

func TestEntityCache_GetVehicleReturnsCopy(t *testing.T) {
	cache := NewEntityCache()
	cache.AddVehicle(core.Vehicle{ID: "v1", ActiveMishaps: []core.Mishap{{Name: "Flat Tire"}}})

	got, _ := cache.GetVehicle("v1")
	got.ActiveMishaps[0].Name = "changed"
	got.HP = 999

	again, _ := cache.GetVehicle("v1")
	assert.Equal(t, "Flat Tire", again.ActiveMishaps[0].Name)
	assert.Equal(t, 0, again.HP)
}

func TestEntityCache_Entity(t *testing.T) {
	cache := NewEntityCache()
	cache.AddVehicle(core.Vehicle{ID: "7"})
	cache.AddCreature(core.Creature{ID: "7"})

	e, ok := cache.Entity(core.EntityKey{Kind: core.KindVehicle, ID: "7"})
	require.True(t, ok)
	assert.Equal(t, core.KindVehicle, e.Kind)
	require.NotNil(t, e.Vehicle)

	e, ok = cache.Entity(core.EntityKey{Kind: core.KindCreature, ID: "7"})
	require.True(t, ok)
	assert.Equal(t, core.KindCreature, e.Kind)
	require.NotNil(t, e.Creature)

	_, ok = cache.Entity(core.EntityKey{Kind: "boat", ID: "7"})
	assert.False(t, ok)
}

func TestEntityCache_EntitiesOrdered(t *testing.T) {
	cache := NewEntityCache()
	cache.AddCreature(core.Creature{ID: "b"})
	cache.AddVehicle(core.Vehicle{ID: "z"})
	cache.AddCreature(core.Creature{ID: "a"})
	cache.AddVehicle(core.Vehicle{ID: "m"})

	var keys []string
	for _, e := range cache.Entities() {
		keys = append(keys, e.Movable().Key().String())
	}
	assert.Equal(t, []string{"vehicle:m", "vehicle:z", "creature:a", "creature:b"}, keys)
}

func TestEntityCache_CommitPosition(t *testing.T) {
	cache := NewEntityCache()
	cache.AddVehicle(core.Vehicle{ID: "v1"})
	cache.AddCreature(core.Creature{ID: "c1"})

	assert.True(t, cache.CommitPosition(core.EntityKey{Kind: core.KindVehicle, ID: "v1"}, core.Position{X: 10, Y: -5}))
	assert.True(t, cache.CommitPosition(core.EntityKey{Kind: core.KindCreature, ID: "c1"}, core.Position{X: 3, Y: 4}))
	assert.False(t, cache.CommitPosition(core.EntityKey{Kind: core.KindVehicle, ID: "c1"}, core.Position{}))

	v, _ := cache.GetVehicle("v1")
	assert.Equal(t, core.Position{X: 10, Y: -5}, v.Position)
	c, _ := cache.GetCreature("c1")
	assert.Equal(t, core.Position{X: 3, Y: 4}, c.Position)
}

func TestEntityCache_ApplyDamage(t *testing.T) {
	cache := NewEntityCache()
	cache.AddVehicle(core.Vehicle{ID: "v1", HP: 30})

	v, ok := cache.ApplyDamage("v1", -25, []core.Mishap{{Name: "Locked Steering"}})
	require.True(t, ok)
	assert.Equal(t, 5, v.HP)
	assert.True(t, v.HasMishap(core.MishapLockedSteering))

	v, ok = cache.ApplyDamage("v1", -25, nil)
	require.True(t, ok)
	assert.Equal(t, 0, v.HP, "HP is floored at zero")
	assert.Empty(t, v.ActiveMishaps)

	_, ok = cache.ApplyDamage("missing", -1, nil)
	assert.False(t, ok)
}

func TestEntityCache_AddMishap(t *testing.T) {
	cache := NewEntityCache()
	cache.AddVehicle(core.Vehicle{ID: "v1"})

	require.True(t, cache.AddMishap("v1", core.Mishap{Name: "Flat Tire"}))
	require.True(t, cache.AddMishap("v1", core.Mishap{Name: "Locked Steering"}))
	assert.False(t, cache.AddMishap("missing", core.Mishap{Name: "x"}))

	v, _ := cache.GetVehicle("v1")
	require.Len(t, v.ActiveMishaps, 2)
	assert.Equal(t, "Locked Steering", v.ActiveMishaps[1].Name)
}

func TestEntityCache_Reset(t *testing.T) {
	cache := NewEntityCache()

	cache.AddVehicle(core.Vehicle{ID: "v1"})
	cache.AddCreature(core.Creature{ID: "c1"})
	cache.AddCreature(core.Creature{ID: "c2"})

	assert.Len(t, cache.Vehicles, 1)
	assert.Len(t, cache.Creatures, 2)

	cache.Reset()

	assert.Len(t, cache.Vehicles, 0)
	assert.Len(t, cache.Creatures, 0)

	cache.AddVehicle(core.Vehicle{ID: "v3"})
	_, ok := cache.GetVehicle("v3")
	assert.True(t, ok, "expected to find vehicle added after reset")
}

func TestEntityCache_Concurrent(t *testing.T) {
	cache := NewEntityCache()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			cache.AddVehicle(core.Vehicle{ID: id})
		}(fmt.Sprint(i))
		go func(id string) {
			defer wg.Done()
			cache.AddCreature(core.Creature{ID: id})
		}(fmt.Sprint(i))
	}
	wg.Wait()

	assert.Len(t, cache.Vehicles, 100)
	assert.Len(t, cache.Creatures, 100)

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			cache.CommitPosition(core.EntityKey{Kind: core.KindVehicle, ID: id}, core.Position{X: 1})
		}(fmt.Sprint(i))
		go func(id string) {
			defer wg.Done()
			cache.GetCreature(id)
		}(fmt.Sprint(i))
	}
	wg.Wait()
}

// SafeCounter tests

func TestSafeCounter_InitialValue(t *testing.T) {
	c := &SafeCounter{}
	assert.Equal(t, int(0), c.Value())
}

func TestSafeCounter_Set(t *testing.T) {
	c := &SafeCounter{}

	c.Set(42)
	assert.Equal(t, int(42), c.Value())

	c.Set(0)
	assert.Equal(t, int(0), c.Value())
}

func TestSafeCounter_Inc(t *testing.T) {
	c := &SafeCounter{}

	c.Inc()
	c.Inc()
	c.Inc()
	assert.Equal(t, int(3), c.Value())
}

func TestSafeCounter_Concurrent(t *testing.T) {
	c := &SafeCounter{}
	var wg sync.WaitGroup

	for i := 0; i < 1000; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	assert.Equal(t, int(1000), c.Value())
}
