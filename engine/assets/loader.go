package assets

import "github.com/spaghettifunk/anima-pipeline/engine/renderer/metadata"

type Loader interface {
	Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error)
}
