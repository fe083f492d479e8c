package material

import "strings"

// GLSL 330 sources for the instanced matcap pipeline. Each optional stage
// contributes declarations and a body fragment; Compose concatenates them in
// a fixed order so the same Spec always yields the same program.

const vertexShader = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
in mat4 instanceTransform;

uniform mat4 mvp;
uniform mat4 matView;

out vec3 fragNormal;
out vec3 fragViewDir;
out vec2 fragTexCoord;

void main() {
    vec4 world = instanceTransform * vec4(vertexPosition, 1.0);
    mat3 normalMatrix = mat3(instanceTransform);
    vec3 viewNormal = normalize(mat3(matView) * normalMatrix * vertexNormal);
    vec4 viewPos = matView * world;
    fragNormal = viewNormal;
    fragViewDir = normalize(-viewPos.xyz);
    fragTexCoord = vertexTexCoord;
    gl_Position = mvp * world;
}
`

const fragmentHeader = `#version 330
in vec3 fragNormal;
in vec3 fragViewDir;
in vec2 fragTexCoord;

uniform sampler2D texture0;
uniform vec4 colDiffuse;
uniform vec3 lightColor;
uniform float lightIntensity;

out vec4 finalColor;
`

type chunk struct {
	decl string
	body string
}

var baseChunks = map[Mode]chunk{
	ModeMatcap: {
		body: `    vec2 muv = fragNormal.xy * 0.5 + 0.5;
    vec3 color = texture(texture0, muv).rgb;
`,
	},
	ModeToon: {
		body: `    vec2 muv = fragNormal.xy * 0.5 + 0.5;
    vec3 color = texture(texture0, muv).rgb;
`,
	},
	ModeStandard: {
		body: `    vec3 color = texture(texture0, fragTexCoord).rgb * colDiffuse.rgb;
`,
	},
}

var stageChunks = []struct {
	stage Stage
	chunk chunk
}{
	{StageBlend, chunk{
		decl: `uniform sampler2D textureB;
uniform float mixRatio;
`,
		body: `    color = mix(color, texture(textureB, muv).rgb, mixRatio);
`,
	}},
	{StageToon, chunk{
		decl: `uniform float toonSteps;
`,
		body: `    float lum = dot(color, vec3(0.299, 0.587, 0.114));
    float stepped = floor(lum * toonSteps) / max(toonSteps - 1.0, 1.0);
    color *= stepped / max(lum, 0.0001);
`,
	}},
	{StageRim, chunk{
		decl: `uniform vec3 rimColor;
uniform float rimIntensity;
uniform float rimPower;
`,
		body: `    float rim = pow(1.0 - max(dot(fragNormal, fragViewDir), 0.0), rimPower);
    color += rimColor * rim * rimIntensity;
`,
	}},
}

// Compose returns the vertex and fragment shader sources for spec.
func Compose(spec Spec) (vs, fs string) {
	var decl, body strings.Builder
	base, ok := baseChunks[spec.Mode]
	if !ok {
		base = baseChunks[ModeMatcap]
	}
	body.WriteString(base.body)
	for _, sc := range stageChunks {
		if !spec.Stages.Has(sc.stage) {
			continue
		}
		decl.WriteString(sc.chunk.decl)
		body.WriteString(sc.chunk.body)
	}

	var out strings.Builder
	out.WriteString(fragmentHeader)
	out.WriteString(decl.String())
	out.WriteString("\nvoid main() {\n")
	out.WriteString(body.String())
	out.WriteString("    finalColor = vec4(color * lightColor * lightIntensity, 1.0);\n}\n")
	return vertexShader, out.String()
}

// UniformNames lists the uniforms a composed program declares beyond the
// raylib defaults, in declaration order.
func UniformNames(spec Spec) []string {
	names := []string{"lightColor", "lightIntensity"}
	for _, sc := range stageChunks {
		if !spec.Stages.Has(sc.stage) {
			continue
		}
		switch sc.stage {
		case StageBlend:
			names = append(names, "textureB", "mixRatio")
		case StageToon:
			names = append(names, "toonSteps")
		case StageRim:
			names = append(names, "rimColor", "rimIntensity", "rimPower")
		}
	}
	return names
}
