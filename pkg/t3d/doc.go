// Package t3d reads the T3D text export format.
//
// A T3D document is a list of lines holding nested blocks:
//
//	Begin Object Class=Material Name=M_Rock
//	    Begin Object Class=MaterialExpressionTextureSample Name=MaterialExpressionTextureSample_0
//	        Texture=Texture2D'Rocks.T_Rock_D'
//	    End Object
//	    DiffuseColor=(Expression=MaterialExpressionTextureSample'MaterialExpressionTextureSample_0')
//	End Object
//
// Cursor walks those lines. It extracts keyed values (quoted strings,
// parenthesized groups and bare tokens), recognizes block boundaries, skips
// unknown blocks by structural balancing, and can save and restore its
// position for speculative parses.
//
// The value helpers convert the format's vectors, fixed-point rotations and
// colors into Vector, Rotator and Color.
package t3d
