package lattice

import (
	"reflect"
	"testing"
)

func TestStageLattice_Present(t *testing.T) {
	tests := []struct {
		name    string
		hasGS   bool
		hasTS   bool
		tier    Tier
		present bool
	}{
		{"const_always", false, false, Const, true},
		{"cpu_always", false, false, CPU, true},
		{"vs_always", false, false, VS, true},
		{"fs_always", false, false, FS, true},
		{"gs_absent_by_default", false, false, GS, false},
		{"ts_absent_by_default", false, false, TS, false},
		{"gs_present_when_enabled", true, false, GS, true},
		{"ts_present_when_enabled", false, true, TS, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.hasGS, tt.hasTS)
			if got := l.Present(tt.tier); got != tt.present {
				t.Errorf("Present(%s) = %v, want %v", tt.tier, got, tt.present)
			}
		})
	}
}

func TestStageLattice_ExecutionOrder(t *testing.T) {
	tests := []struct {
		name       string
		hasGS      bool
		hasTS      bool
		want       []Tier
	}{
		{"minimal", false, false, []Tier{Const, CPU, VS, FS}},
		{"with_gs", true, false, []Tier{Const, CPU, VS, GS, FS}},
		{"with_ts", false, true, []Tier{Const, CPU, VS, TS, FS}},
		{"with_both", true, true, []Tier{Const, CPU, VS, TS, GS, FS}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.hasGS, tt.hasTS).ExecutionOrder()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExecutionOrder() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStageLattice_ShaderStagesExcludesClassificationTiers(t *testing.T) {
	got := New(false, false).ShaderStages()
	want := []Tier{VS, FS}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ShaderStages() = %v, want %v", got, want)
	}
}

func TestStageLattice_JoinMeet(t *testing.T) {
	l := New(false, false)
	if got := l.Join(CPU, VS); got != VS {
		t.Errorf("Join(CPU, VS) = %s, want VS", got)
	}
	if got := l.Join(FS, Const); got != FS {
		t.Errorf("Join(FS, CONST) = %s, want FS", got)
	}
	if got := l.Meet(CPU, VS); got != CPU {
		t.Errorf("Meet(CPU, VS) = %s, want CPU", got)
	}
}

func TestStageLattice_NextStage(t *testing.T) {
	l := New(false, false)
	next, ok := l.NextStage(VS)
	if !ok || next != FS {
		t.Errorf("NextStage(VS) = %s, %v; want FS, true", next, ok)
	}
	_, ok = l.NextStage(FS)
	if ok {
		t.Error("NextStage(FS) should report no next stage")
	}
}

func TestTier_Less(t *testing.T) {
	if !Const.Less(CPU) {
		t.Error("CONST should be less than CPU")
	}
	if FS.Less(VS) {
		t.Error("FS should not be less than VS")
	}
}
