//go:build opencv

package main

// Registers the OpenCV filters. Build with -tags opencv.
import _ "github.com/wbrown/pixelpipe/opencv"
