// Copyright 2018 Bull S.A.S. Atos Technologies - Bull, Rue Jean Jaures, B.P.68, 78340, Les Clayes-sous-Bois, France.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"reflect"
	"testing"
	"time"
)

func TestDynamicMap_Get(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		inputs DynamicMap
		key    string
		want   interface{}
	}{
		{"TestString", DynamicMap{"s": "res", "S1": 1}, "s", "res"},
		{"TestInt", DynamicMap{"s": "res", "S1": 1}, "S1", 1},
		{"TestNil", DynamicMap{"s": "res", "S1": 1}, "S4", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inputs.Get(tt.key); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DynamicMap.Get() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDynamicMap_GetString(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		inputs DynamicMap
		key    string
		want   string
	}{
		{"TestString", DynamicMap{"s": "res", "S1": 1}, "s", "res"},
		{"TestInt", DynamicMap{"s": "res", "S1": 1}, "S1", "1"},
		{"TestNil", DynamicMap{"s": "res", "S1": 1}, "S4", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inputs.GetString(tt.key); got != tt.want {
				t.Errorf("DynamicMap.GetString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDynamicMap_GetStringOrDefault(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		inputs     DynamicMap
		key        string
		defaultVal string
		want       string
	}{
		{"TestString", DynamicMap{"s": "res", "S1": 1}, "s", "res2", "res"},
		{"TestInt", DynamicMap{"s": "res", "S1": 1}, "S1", "res2", "1"},
		{"TestNil", DynamicMap{"s": "res", "S1": 1}, "S4", "res2", "res2"},
		{"TestNotAString", DynamicMap{"s": []int{1}}, "s", "res2", "res2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inputs.GetStringOrDefault(tt.key, tt.defaultVal); got != tt.want {
				t.Errorf("DynamicMap.GetStringOrDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDynamicMap_GetStringSlice(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		inputs DynamicMap
		key    string
		want   []string
	}{
		{"TestCommaSeparated", DynamicMap{"s": "relu,swish"}, "s", []string{"relu", "swish"}},
		{"TestSlice", DynamicMap{"s": []interface{}{"relu", "swish"}}, "s", []string{"relu", "swish"}},
		{"TestNil", DynamicMap{}, "s", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inputs.GetStringSlice(tt.key); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DynamicMap.GetStringSlice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDynamicMap_TypedGetters(t *testing.T) {
	t.Parallel()
	dm := DynamicMap{"b": "true", "i": "8", "d": "1m30s"}
	if !dm.GetBool("b") {
		t.Errorf("DynamicMap.GetBool() = false, want true")
	}
	if got := dm.GetInt("i"); got != 8 {
		t.Errorf("DynamicMap.GetInt() = %d, want 8", got)
	}
	if got := dm.GetDuration("d"); got != 90*time.Second {
		t.Errorf("DynamicMap.GetDuration() = %v, want 1m30s", got)
	}
}

func TestDynamicMap_Keys(t *testing.T) {
	t.Parallel()
	dm := DynamicMap{"mail-type": "END", "constraint": "volta32gb", "exclusive": ""}
	want := []string{"constraint", "exclusive", "mail-type"}
	if got := dm.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("DynamicMap.Keys() = %v, want %v", got, want)
	}
}
