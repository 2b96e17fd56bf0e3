package typesystem

import "testing"

func TestGLSLName_Scalar(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{ScalarFloat(), "float"},
		{ScalarInt(), "int"},
		{ScalarUint(), "uint"},
		{ScalarBool(), "bool"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, ok := GLSLName(tt.typ)
			if !ok || got != tt.want {
				t.Errorf("GLSLName(%+v) = %q, %v; want %q, true", tt.typ, got, ok, tt.want)
			}
		})
	}
}

func TestGLSLName_Vector(t *testing.T) {
	tests := []struct {
		name string
		typ  Type
		want string
	}{
		{"vec3", Vec(3, Float), "vec3"},
		{"ivec2", Vec(2, Int), "ivec2"},
		{"uvec4", Vec(4, Uint), "uvec4"},
		{"bvec3", Vec(3, Bool), "bvec3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GLSLName(tt.typ)
			if !ok || got != tt.want {
				t.Errorf("GLSLName(%+v) = %q, %v; want %q, true", tt.typ, got, ok, tt.want)
			}
		})
	}
}

// Matrix naming is column x row in GLSL, the inverse of this type model's
// row x column Mat(rows, cols) constructor — the §4.1 tie-break point.
func TestGLSLName_MatrixColumnRowInversion(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols uint8
		want       string
	}{
		{"square_mat4", 4, 4, "mat4"},
		{"square_mat3", 3, 3, "mat3"},
		{"3rows_4cols", 3, 4, "mat4x3"},
		{"4rows_2cols", 4, 2, "mat2x4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := GLSLName(Mat(tt.rows, tt.cols))
			if !ok || got != tt.want {
				t.Errorf("GLSLName(Mat(%d,%d)) = %q, %v; want %q, true", tt.rows, tt.cols, got, ok, tt.want)
			}
		})
	}
}

func TestGLSLName_Array(t *testing.T) {
	got, ok := GLSLName(Array(4, Vec(3, Float)))
	if !ok || got != "vec3[4]" {
		t.Errorf("GLSLName(Array(4, vec3)) = %q, %v; want \"vec3[4]\", true", got, ok)
	}
}

func TestGLSLName_Sampler(t *testing.T) {
	tests := []struct {
		kind SamplerKind
		want string
	}{
		{Sampler2D, "sampler2D"},
		{Sampler3D, "sampler3D"},
		{SamplerCube, "samplerCube"},
		{Sampler2DArray, "sampler2DArray"},
		{SamplerCubeShadow, "samplerCubeShadow"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, ok := GLSLName(Sampler(tt.kind))
			if !ok || got != tt.want {
				t.Errorf("GLSLName(Sampler(%v)) = %q, %v; want %q, true", tt.kind, got, ok, tt.want)
			}
			if !Sampler(tt.kind).IsSampler() {
				t.Errorf("Sampler(%v).IsSampler() = false, want true", tt.kind)
			}
		})
	}
}

func TestGLSLName_StructWithoutDefinitionIsUnrepresentable(t *testing.T) {
	typ := Type{Kind: KindStruct}
	if _, ok := GLSLName(typ); ok {
		t.Error("GLSLName of a struct type with Struct == nil should be unrepresentable")
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Type
		want bool
	}{
		{"same_scalar", ScalarFloat(), ScalarFloat(), true},
		{"same_vector", Vec(3, Float), Vec(3, Float), true},
		{"different_vector_size", Vec(3, Float), Vec(4, Float), false},
		{"different_scalar_kind", Vec(3, Float), Vec(3, Int), false},
		{"matrix_same_shape", Mat(3, 4), Mat(3, 4), true},
		{"matrix_different_shape", Mat(3, 4), Mat(4, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
