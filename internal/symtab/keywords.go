package symtab

// keywords lists GLSL 4.40 reserved words and built-ins relevant to the
// vertex/tessellation/geometry/fragment stages this compiler targets.
// Adapted from the GLSL reserved-word survey used by the pack's GLSL
// backend, trimmed to the compute/image/atomic-counter-free subset this
// compiler's output surface actually exercises (§4.7: no compute stage).
var keywords = map[string]struct{}{
	"void": {}, "bool": {}, "int": {}, "uint": {}, "float": {}, "double": {},

	"vec2": {}, "vec3": {}, "vec4": {},
	"ivec2": {}, "ivec3": {}, "ivec4": {},
	"uvec2": {}, "uvec3": {}, "uvec4": {},
	"bvec2": {}, "bvec3": {}, "bvec4": {},

	"mat2": {}, "mat3": {}, "mat4": {},
	"mat2x2": {}, "mat2x3": {}, "mat2x4": {},
	"mat3x2": {}, "mat3x3": {}, "mat3x4": {},
	"mat4x2": {}, "mat4x3": {}, "mat4x4": {},

	"sampler2D": {}, "sampler3D": {}, "samplerCube": {},
	"sampler2DArray": {}, "samplerCubeShadow": {},

	"attribute": {}, "const": {}, "uniform": {}, "varying": {},
	"layout": {}, "centroid": {}, "flat": {}, "smooth": {}, "noperspective": {},
	"patch": {}, "sample": {},
	"break": {}, "continue": {}, "do": {}, "for": {}, "while": {}, "switch": {}, "case": {}, "default": {},
	"if": {}, "else": {},
	"in": {}, "out": {}, "inout": {},
	"true": {}, "false": {},
	"invariant": {}, "precise": {},
	"discard": {}, "return": {},
	"struct": {},

	"lowp": {}, "mediump": {}, "highp": {}, "precision": {},

	"common": {}, "partition": {}, "active": {},
	"asm": {}, "class": {}, "union": {}, "enum": {}, "typedef": {}, "template": {}, "this": {},
	"goto": {}, "inline": {}, "noinline": {}, "public": {}, "static": {}, "extern": {}, "external": {}, "interface": {},
	"long": {}, "short": {}, "half": {}, "fixed": {}, "unsigned": {}, "superp": {},
	"input": {}, "output": {},
	"filter": {}, "sizeof": {}, "cast": {}, "namespace": {}, "using": {}, "buffer": {},

	"gl_VertexID": {}, "gl_InstanceID": {},
	"gl_Position": {}, "gl_PointSize": {}, "gl_ClipDistance": {}, "gl_CullDistance": {},
	"gl_PerVertex": {},
	"gl_FragCoord": {}, "gl_FrontFacing": {}, "gl_PointCoord": {},
	"gl_FragDepth": {},
	"gl_PatchVerticesIn": {}, "gl_PrimitiveID": {}, "gl_InvocationID": {},
	"gl_TessLevelOuter": {}, "gl_TessLevelInner": {}, "gl_TessCoord": {},
	"gl_PrimitiveIDIn": {},

	"main": {},
	"radians": {}, "degrees": {}, "sin": {}, "cos": {}, "tan": {},
	"asin": {}, "acos": {}, "atan": {},
	"pow": {}, "exp": {}, "log": {}, "exp2": {}, "log2": {}, "sqrt": {}, "inversesqrt": {},
	"abs": {}, "sign": {}, "floor": {}, "trunc": {}, "round": {}, "ceil": {}, "fract": {},
	"mod": {}, "min": {}, "max": {}, "clamp": {}, "mix": {}, "step": {}, "smoothstep": {},
	"length": {}, "distance": {}, "dot": {}, "cross": {}, "normalize": {}, "reflect": {}, "refract": {},
	"transpose": {}, "inverse": {},
	"texture": {}, "textureLod": {}, "textureProj": {},
	"dFdx": {}, "dFdy": {}, "fwidth": {},
}
