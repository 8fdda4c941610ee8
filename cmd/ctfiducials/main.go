package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"ctfiducials/internal/models"
	"ctfiducials/pkg/blob"
	"ctfiducials/pkg/config"
	"ctfiducials/pkg/monitoring"
	"ctfiducials/pkg/pipeline"
	"ctfiducials/pkg/segmentation"
	"ctfiducials/pkg/sliceio"
	"ctfiducials/pkg/visualization"
)

func main() {
	// Parse command line arguments
	inputDir := flag.String("input", "", "Directory containing 16-bit PNG slices with YAML sidecars")
	configPath := flag.String("config", "ctfiducials.yaml", "Configuration file (defaults are used if it does not exist)")
	outputDir := flag.String("output", "ctfiducials_output", "Directory for overlays")
	numCores := flag.Int("cores", 0, "Number of slices processed concurrently (default: config, then all CPUs)")
	variant := flag.String("variant", "", "Hole detector: levelset, otsu or blob (default: config)")
	writeConfig := flag.Bool("write-config", false, "Write the default configuration to -config and exit")
	keypoints := flag.Bool("keypoints", false, "Also save the blob keypoint overlay of every slice")
	flag.Parse()

	if *writeConfig {
		if err := config.CreateDefaultConfigFile(*configPath); err != nil {
			log.Fatalf("Failed to write config: %v", err)
		}
		fmt.Printf("Default configuration written to %s\n", *configPath)
		return
	}

	// Validate inputs
	if *inputDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *numCores > 0 {
		cfg.Processing.NumCores = *numCores
	}
	if cfg.Processing.NumCores < 1 {
		cfg.Processing.NumCores = runtime.NumCPU()
	}
	if *variant != "" {
		cfg.Holes.Variant = *variant
	}
	if !cfg.Output.Verbose {
		monitoring.SetLogger(nil)
	}

	fmt.Println("================================")
	fmt.Println("CT FIDUCIAL MARKER SEGMENTATION")
	fmt.Println("================================")

	vol, err := sliceio.LoadDirectory(*inputDir)
	if err != nil {
		log.Fatalf("Failed to load slices: %v", err)
	}
	fmt.Printf("Loaded %d slices from %s\n", vol.Len(), *inputDir)

	processor, err := pipeline.NewProcessor(cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	fmt.Printf("Detecting markers with the %s detector on %d cores...\n", cfg.Holes.Variant, cfg.Processing.NumCores)
	startTime := time.Now()
	results := processor.ProcessVolume(vol)
	fmt.Printf("Processing completed in %.2f seconds\n\n", time.Since(startTime).Seconds())

	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("Slice %d: skipped (%v)\n", res.Index, res.Err)
			continue
		}
		fmt.Printf("Slice %d (z=%.1f mm): %d markers\n", res.Index, res.Meta.ZIndex, len(res.Markers))
		for _, m := range res.Markers {
			fmt.Printf("  label %-3d x=%8.2f mm  y=%8.2f mm  area=%7.2f mm²  roundness=%.3f  elongation=%.3f\n",
				m.Label, m.PhysicalCentroid[0], m.PhysicalCentroid[1], m.PhysicalArea, m.Roundness, m.Elongation)
		}
	}

	if failed := pipeline.Failed(results); len(failed) > 0 {
		fmt.Printf("\n%d of %d slices failed\n", len(failed), len(results))
	}

	if cfg.Output.SaveOverlays {
		fmt.Printf("\nSaving overlays to: %s\n", *outputDir)
		for i, res := range results {
			if res.Err != nil {
				continue
			}
			viewer := visualization.NewViewer(vol.Slices[i], vol.Meta[i])
			if _, err := viewer.SaveOverlay(res.Body, res.Labels, *outputDir); err != nil {
				log.Printf("Warning: Failed to save overlay of slice %d: %v", res.Index, err)
			}
		}
	}

	if *keypoints {
		if err := saveKeypointOverlays(cfg, results, vol.Slices, *outputDir); err != nil {
			log.Printf("Warning: %v", err)
		}
	}
}

// saveKeypointOverlays runs the blob detector on every body-masked slice and
// saves its annotated image with the body outline and z caption
func saveKeypointOverlays(cfg *config.Config, results []pipeline.SliceResult, slices []*models.Slice, outputDir string) error {
	d, err := blob.NewDetector(blob.ParamsFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create blob detector: %w", err)
	}
	cv := &blob.CV{Detector: d}

	for i, res := range results {
		if res.Err != nil {
			continue
		}
		img, kps, err := cv.Execute(segmentation.BodyMask(slices[i], res.Body))
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("keypoints_%03d.png", res.Index))
		if err := visualization.SaveImage(visualization.KeypointOverlay(img, res.Body, res.Meta.ZIndex), filename); err != nil {
			return err
		}
		fmt.Printf("Slice %d: %d keypoints saved to %s\n", res.Index, len(kps), filename)
	}
	return nil
}
