package main

import (
	"fmt"

	"k4solve/internal/cipher"
	"k4solve/internal/classing"
	"k4solve/internal/config"
	"k4solve/internal/trial"
	"k4solve/internal/wheel"
)

// inputs bundles everything a command needs after loading the run config.
type inputs struct {
	cfg     *config.Config
	text    cipher.Text
	anchors []wheel.Anchor
	part    *classing.Partition
	opts    wheel.Options
	mode    classing.AddressingMode
}

func loadInputs(path string) (*inputs, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if cfg.Ciphertext == "" || cfg.Anchors == "" {
		return nil, fmt.Errorf("config must name both ciphertext and anchors files")
	}
	text, err := config.LoadCiphertext(cfg.Ciphertext)
	if err != nil {
		return nil, err
	}
	anchors, err := config.LoadAnchors(cfg.Anchors)
	if err != nil {
		return nil, err
	}
	for _, a := range anchors {
		if err := a.Validate(len(text)); err != nil {
			return nil, err
		}
	}
	assignment, err := cfg.Assignment()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.SolveOptions()
	if err != nil {
		return nil, err
	}
	return &inputs{
		cfg:     cfg,
		text:    text,
		anchors: anchors,
		part:    classing.NewPartition(assignment, len(text)),
		opts:    opts,
		mode:    opts.Mode,
	}, nil
}

func (in *inputs) baseline() trial.Baseline {
	return trial.Baseline{
		Text:    in.text,
		Anchors: in.anchors,
		Part:    in.part,
		Opts:    in.opts,
	}
}
