package material

const (
	classTextureSample     = "MaterialExpressionTextureSample"
	classTextureSampleCube = "MaterialExpressionTextureSampleParameterCube"
	classFlipBookSample    = "MaterialExpressionFlipBookSample"
	classFunctionCall      = "MaterialExpressionMaterialFunctionCall"
	classLightVector       = "MaterialExpressionLightVector"
	classComment           = "MaterialExpressionComment"
	classConstant          = "MaterialExpressionConstant"
	classConstant3Vector   = "MaterialExpressionConstant3Vector"
	classConstant4Vector   = "MaterialExpressionConstant4Vector"
	classDesaturation      = "MaterialExpressionDesaturation"

	// LightVectorFunction replaces the legacy light vector node.
	LightVectorFunction = "/Game/LightVectorProxy.LightVectorProxy"

	// FlipBookFunction is called by expanded flip book samples.
	FlipBookFunction = "/Engine/Functions/Engine_MaterialFunctions02/Texturing/FlipBook.FlipBook"
)

// renames maps legacy expression classes to their current equivalent.
var renames = map[string]string{
	"MaterialExpressionReflectionVector":       "MaterialExpressionReflectionVectorWS",
	"MaterialExpressionConstantClamp":          "MaterialExpressionClamp",
	"MaterialExpressionCameraVector":           "MaterialExpressionCameraVectorWS",
	"MaterialExpressionDestDepth":              "MaterialExpressionSceneDepth",
	"MaterialExpressionMeshEmitterVertexColor": "MaterialExpressionParticleColor",
	"MaterialExpressionMeshSubUV":              classTextureSample,
	"MaterialExpressionDestColor":              "MaterialExpressionSceneColor",
	classLightVector:                           classFunctionCall,
}

// unsupported lists legacy classes with no current equivalent.
var unsupported = map[string]bool{
	"MaterialExpressionDepthBiasedAlpha":            true,
	"MaterialExpressionDepthBiasedBlend":            true,
	"MaterialExpressionLensFlareRadialDistance":     true,
	"MaterialExpressionLensFlareIntensity":          true,
	"MaterialExpressionLensFlareOcclusion":          true,
	"MaterialExpressionTextureSampleParameterMovie": true,
}

// expressionInputs lists the known expression classes and the names of
// their expression inputs.
var expressionInputs = map[string][]string{
	"MaterialExpressionAbs":                          {"Input"},
	"MaterialExpressionAdd":                          {"A", "B"},
	"MaterialExpressionAppendVector":                 {"A", "B"},
	"MaterialExpressionBumpOffset":                   {"Coordinate", "Height", "HeightRatioInput"},
	"MaterialExpressionCameraVectorWS":               nil,
	"MaterialExpressionCeil":                         {"Input"},
	"MaterialExpressionClamp":                        {"Input", "Min", "Max"},
	classComment:                                     nil,
	"MaterialExpressionComponentMask":                {"Input"},
	classConstant:                                    nil,
	"MaterialExpressionConstant2Vector":              nil,
	classConstant3Vector:                             nil,
	classConstant4Vector:                             nil,
	"MaterialExpressionCosine":                       {"Input"},
	"MaterialExpressionCrossProduct":                 {"A", "B"},
	"MaterialExpressionDepthFade":                    {"InOpacity", "FadeDistance"},
	classDesaturation:                                {"Input", "Fraction"},
	"MaterialExpressionDistance":                     {"A", "B"},
	"MaterialExpressionDivide":                       {"A", "B"},
	"MaterialExpressionDotProduct":                   {"A", "B"},
	"MaterialExpressionDynamicParameter":             nil,
	"MaterialExpressionFloor":                        {"Input"},
	"MaterialExpressionFmod":                         {"A", "B"},
	"MaterialExpressionFrac":                         {"Input"},
	"MaterialExpressionFresnel":                      {"ExponentIn", "BaseReflectFractionIn", "Normal"},
	"MaterialExpressionIf":                           {"A", "B", "AGreaterThanB", "AEqualsB", "ALessThanB"},
	"MaterialExpressionLightmapUVs":                  nil,
	"MaterialExpressionLinearInterpolate":            {"A", "B", "Alpha"},
	classFunctionCall:                                nil,
	"MaterialExpressionMax":                          {"A", "B"},
	"MaterialExpressionMin":                          {"A", "B"},
	"MaterialExpressionMultiply":                     {"A", "B"},
	"MaterialExpressionNormalize":                    {"VectorInput"},
	"MaterialExpressionOneMinus":                     {"Input"},
	"MaterialExpressionPanner":                       {"Coordinate", "Time"},
	"MaterialExpressionParticleColor":                nil,
	"MaterialExpressionPixelDepth":                   nil,
	"MaterialExpressionPower":                        {"Base", "Exponent"},
	"MaterialExpressionReflectionVectorWS":           {"CustomWorldNormal"},
	"MaterialExpressionRotator":                      {"Coordinate", "Time"},
	"MaterialExpressionScalarParameter":              nil,
	"MaterialExpressionSceneColor":                   {"OffsetFraction"},
	"MaterialExpressionSceneDepth":                   {"Input"},
	"MaterialExpressionScreenPosition":               nil,
	"MaterialExpressionSine":                         {"Input"},
	"MaterialExpressionSquareRoot":                   {"Input"},
	"MaterialExpressionStaticBoolParameter":          nil,
	"MaterialExpressionStaticComponentMaskParameter": {"Input"},
	"MaterialExpressionStaticSwitchParameter":        {"A", "B"},
	"MaterialExpressionSubtract":                     {"A", "B"},
	classTextureSample:                               {"Coordinates"},
	"MaterialExpressionTextureSampleParameter2D":     {"Coordinates"},
	classTextureSampleCube:                           {"Coordinates"},
	"MaterialExpressionTextureCoordinate":            nil,
	"MaterialExpressionTextureObject":                nil,
	"MaterialExpressionTime":                         nil,
	"MaterialExpressionTransform":                    {"Input"},
	"MaterialExpressionTransformPosition":            {"Input"},
	"MaterialExpressionVectorParameter":              nil,
	"MaterialExpressionVertexColor":                  nil,
	"MaterialExpressionWorldPosition":                nil,
}

// skippedExpressionProperties are editor bookkeeping not carried over.
var skippedExpressionProperties = map[string]bool{
	"Material":               true,
	"Name":                   true,
	"ExpressionGUID":         true,
	"ObjectArchetype":        true,
	"bIsParameterExpression": true,
}

// materialInputs maps legacy material input properties to current ones.
// An empty target is read and ignored.
var materialInputs = []struct {
	key    string
	target string
}{
	{"DiffuseColor=", "BaseColor"},
	{"SpecularColor=", "Specular"},
	{"SpecularPower=", ""},
	{"Normal=", "Normal"},
	{"EmissiveColor=", "EmissiveColor"},
	{"Opacity=", "Opacity"},
	{"OpacityMask=", "OpacityMask"},
}

func isKnownExpression(class string) bool {
	_, ok := expressionInputs[class]
	return ok
}

func isTextureExpression(class string) bool {
	switch class {
	case classTextureSample, classTextureSampleCube,
		"MaterialExpressionTextureSampleParameter2D", "MaterialExpressionTextureObject":
		return true
	}
	return false
}

// SamplerType returns the sampler type matching a texture compression
// setting.
func SamplerType(compression string) string {
	switch compression {
	case "TC_Normalmap":
		return "SAMPLERTYPE_Normal"
	case "TC_Grayscale":
		return "SAMPLERTYPE_Grayscale"
	case "TC_Masks":
		return "SAMPLERTYPE_Masks"
	case "TC_Alpha":
		return "SAMPLERTYPE_Alpha"
	default:
		return "SAMPLERTYPE_Color"
	}
}
