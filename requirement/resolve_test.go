package requirement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/damianw/dagger/bindingkey"
	"github.com/damianw/dagger/typemodel"
)

// fakeServices is an in-memory member universe with call counting, so
// tests can assert which services a resolution actually consulted.
type fakeServices struct {
	members       map[typemodel.Ref][]typemodel.Method
	constructible map[typemodel.Ref]bool

	memberCalls int
}

func (f *fakeServices) AllMembers(ref typemodel.Ref) []typemodel.Method {
	f.memberCalls++
	return f.members[ref]
}

func (f *fakeServices) CanMakeNewInstance(ref typemodel.Ref) bool {
	return f.constructible[ref]
}

func services(ref typemodel.Ref, constructible bool, members ...typemodel.Method) *fakeServices {
	return &fakeServices{
		members:       map[typemodel.Ref][]typemodel.Method{ref: members},
		constructible: map[typemodel.Ref]bool{ref: constructible},
	}
}

var moduleRef = typemodel.MakeRef("example.com/app", "TestModule")

func TestRequiresPassedInstance(t *testing.T) {
	tests := []struct {
		name          string
		members       []typemodel.Method
		constructible bool
		want          bool
	}{
		{
			name: "no members",
			want: false,
		},
		{
			name: "only concrete unmarked methods",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("Validate", false, false),
				typemodel.NewMarkedMethod("String", false, false),
			},
			constructible: true,
			want:          false,
		},
		{
			name: "abstract method without binding marker",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("Start", true, false),
			},
			constructible: true,
			want:          true,
		},
		{
			name: "abstract non-binding method trumps everything else",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("ProvideCache", false, false, typemodel.MarkerProvides),
				typemodel.NewMarkedMethod("BindEngine", true, false, typemodel.MarkerBinds),
				typemodel.NewMarkedMethod("Start", true, false),
			},
			constructible: true,
			want:          true,
		},
		{
			name: "abstract binds method only",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("BindEngine", true, false, typemodel.MarkerBinds),
			},
			constructible: false,
			want:          false,
		},
		{
			name: "abstract multibinds and bindsoptional methods",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("Plugins", true, false, typemodel.MarkerMultibinds),
				typemodel.NewMarkedMethod("MaybeCache", true, false, typemodel.MarkerBindsOptional),
			},
			constructible: false,
			want:          false,
		},
		{
			name: "instance provider on constructible module",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("ProvideCache", false, false, typemodel.MarkerProvides),
			},
			constructible: true,
			want:          false,
		},
		{
			name: "instance provider on non-constructible module",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("ProvideCache", false, false, typemodel.MarkerProvides),
			},
			constructible: false,
			want:          true,
		},
		{
			name: "producer needs a receiver too",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("ProduceReport", false, false, typemodel.MarkerProduces),
			},
			constructible: false,
			want:          true,
		},
		{
			name: "static provider never forces an instance",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("ProvideHammer", false, true, typemodel.MarkerProvides),
			},
			constructible: false,
			want:          false,
		},
		{
			name: "static and instance providers mixed",
			members: []typemodel.Method{
				typemodel.NewMarkedMethod("ProvideHammer", false, true, typemodel.MarkerProvides),
				typemodel.NewMarkedMethod("ProvideCache", false, false, typemodel.MarkerProvides),
			},
			constructible: false,
			want:          true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := services(moduleRef, tt.constructible, tt.members...)
			assert.Equal(t, tt.want, RequiresPassedInstance(moduleRef, svc))
		})
	}
}

// The inference is an existence check over an unordered member set; the
// enumeration order the member service happens to use must not change
// the answer.
func TestRequiresPassedInstanceOrderIndependent(t *testing.T) {
	sets := [][]typemodel.Method{
		{
			typemodel.NewMarkedMethod("ProvideCache", false, false, typemodel.MarkerProvides),
			typemodel.NewMarkedMethod("Start", true, false),
			typemodel.NewMarkedMethod("BindEngine", true, false, typemodel.MarkerBinds),
		},
		{
			typemodel.NewMarkedMethod("ProvideHammer", false, true, typemodel.MarkerProvides),
			typemodel.NewMarkedMethod("BindEngine", true, false, typemodel.MarkerBinds),
			typemodel.NewMarkedMethod("Validate", false, false),
		},
	}

	for _, members := range sets {
		var results []bool
		permute(members, func(order []typemodel.Method) {
			svc := services(moduleRef, false, order...)
			results = append(results, RequiresPassedInstance(moduleRef, svc))
		})
		for _, got := range results[1:] {
			assert.Equal(t, results[0], got, "result depends on member order")
		}
	}
}

// permute calls fn with every ordering of members.
func permute(members []typemodel.Method, fn func([]typemodel.Method)) {
	if len(members) <= 1 {
		fn(members)
		return
	}
	for i := range members {
		rest := make([]typemodel.Method, 0, len(members)-1)
		rest = append(rest, members[:i]...)
		rest = append(rest, members[i+1:]...)
		permute(rest, func(tail []typemodel.Method) {
			fn(append([]typemodel.Method{members[i]}, tail...))
		})
	}
}

func TestResolveModule(t *testing.T) {
	module, err := ForModule(moduleRef)
	require.NoError(t, err)

	t.Run("constructible module synthesizes", func(t *testing.T) {
		svc := services(moduleRef, true,
			typemodel.NewMarkedMethod("ProvideCache", false, false, typemodel.MarkerProvides))
		assert.Equal(t, Synthesize, Resolve(module, svc))
	})

	t.Run("non-constructible module with instance provider rejects", func(t *testing.T) {
		svc := services(moduleRef, false,
			typemodel.NewMarkedMethod("ProvideCache", false, false, typemodel.MarkerProvides))
		assert.Equal(t, Reject, Resolve(module, svc))
	})

	t.Run("non-constructible module with only static providers permits", func(t *testing.T) {
		svc := services(moduleRef, false,
			typemodel.NewMarkedMethod("ProvideHammer", false, true, typemodel.MarkerProvides))
		assert.Equal(t, Permit, Resolve(module, svc))
	})
}

func TestResolveShortCircuits(t *testing.T) {
	t.Run("dependency rejects without member enumeration", func(t *testing.T) {
		req, err := ForDependency(moduleRef)
		require.NoError(t, err)
		svc := services(moduleRef, false)
		assert.Equal(t, Reject, Resolve(req, svc))
		assert.Zero(t, svc.memberCalls)
	})

	t.Run("bound instance rejects without member enumeration", func(t *testing.T) {
		req, err := ForBoundInstance(bindingkey.New(moduleRef), false, "m")
		require.NoError(t, err)
		svc := services(moduleRef, false)
		assert.Equal(t, Reject, Resolve(req, svc))
		assert.Zero(t, svc.memberCalls)
	})

	t.Run("nullable bound instance permits via override", func(t *testing.T) {
		req, err := ForBoundInstance(bindingkey.New(moduleRef), true, "m")
		require.NoError(t, err)
		svc := services(moduleRef, false)
		assert.Equal(t, Permit, Resolve(req, svc))
		assert.Zero(t, svc.memberCalls)
	})

	t.Run("override wins for module kind too", func(t *testing.T) {
		req, err := ForModule(moduleRef)
		require.NoError(t, err)
		req.override = Permit
		req.hasOverride = true
		svc := services(moduleRef, true)
		assert.Equal(t, Permit, Resolve(req, svc))
		assert.Zero(t, svc.memberCalls)
	})
}

func TestResolvePanicsOnUnknownKind(t *testing.T) {
	req := Requirement{kind: Kind(42), ref: moduleRef}
	svc := services(moduleRef, false)
	assert.Panics(t, func() { Resolve(req, svc) })
}
