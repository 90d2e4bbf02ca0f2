package framework

import (
	"reflect"
	"testing"
)

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Framework
		want int
	}{
		{"newer first", MustParse("net8.0"), MustParse("net6.0"), -1},
		{"older after", MustParse("netstandard2.0"), MustParse("netcoreapp3.1"), 1},
		{"same version", MustParse("net8.0"), MustParse("net8.0-windows"), 0},
		{"both null", Framework{}, Framework{}, 0},
		{"null after concrete", Framework{}, MustParse("netstandard1.0"), 1},
		{"concrete before null", MustParse("netstandard1.0"), Framework{}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSortNewestFirst(t *testing.T) {
	fws := []Framework{
		MustParse("netstandard2.0"),
		{},
		MustParse("net462"),
		MustParse("net8.0"),
		MustParse("netcoreapp3.1"),
	}
	SortNewestFirst(fws)
	want := []string{"net8.0", "net462", "netcoreapp3.1", "netstandard2.0", ""}
	if got := Names(fws); !reflect.DeepEqual(got, want) {
		t.Errorf("SortNewestFirst() = %v, want %v", got, want)
	}
}

func TestNewest(t *testing.T) {
	if _, ok := Newest(nil); ok {
		t.Error("Newest(nil) should report no framework")
	}
	got, ok := Newest([]Framework{MustParse("net6.0"), MustParse("net8.0"), MustParse("netstandard2.1")})
	if !ok || got.ShortFolderName() != "net8.0" {
		t.Errorf("Newest() = %v, %v", got, ok)
	}
}

func TestIntersect(t *testing.T) {
	sdk := []Framework{MustParse(".NETCoreApp,Version=v6.0"), MustParse(".NETCoreApp,Version=v8.0")}
	pkg := []Framework{MustParse("net8.0"), MustParse("netstandard2.0")}
	got := Intersect(sdk, pkg)
	if len(got) != 1 || got[0].ShortFolderName() != "net8.0" {
		t.Errorf("Intersect() = %v", got)
	}
}

func TestDedupe(t *testing.T) {
	got := Dedupe([]Framework{MustParse("net8.0"), MustParse(".NETCoreApp,Version=v8.0"), MustParse("net6.0")})
	if want := []string{"net8.0", "net6.0"}; !reflect.DeepEqual(Names(got), want) {
		t.Errorf("Dedupe() = %v, want %v", Names(got), want)
	}
}
