package mtl

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

//Save writes the tree as json.
func (t *Tree) Save(filename string) (err error) {
	dest, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "can't open file %s to write", filename)
	}
	defer func() {
		if closeErr := dest.Close(); err == nil {
			err = closeErr
		}
	}()

	modelByteRepr, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return errors.Wrap(err, "can't encode the tree")
	}
	_, err = dest.Write(modelByteRepr)
	return errors.Wrapf(err, "can't write %s", filename)
}

//LoadModel reads a tree saved by Save. Options replace collaborators as in NewTree.
func LoadModel(filename string, options ...Option) (*Tree, error) {
	source, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open %s", filename)
	}
	defer source.Close()

	var loaded Tree
	if err := json.NewDecoder(source).Decode(&loaded); err != nil {
		return nil, errors.Wrapf(err, "can't decode %s", filename)
	}
	if loaded.Root == nil {
		return nil, errors.Errorf("%s holds no tree", filename)
	}

	t := NewTree(loaded.Variant, loaded.Hyper, options...)
	t.Root = loaded.Root
	t.NumFeatures = loaded.NumFeatures
	t.LeafCount = loaded.LeafCount
	t.ModelDF, t.ErrorDF = loaded.ModelDF, loaded.ErrorDF
	if t.FeatureNames == nil {
		t.FeatureNames = loaded.FeatureNames
	}
	return t, nil
}
