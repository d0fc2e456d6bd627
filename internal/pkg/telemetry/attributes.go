package telemetry

// Span attribute keys shared by the service and the HTTP layer.
const (
	AttrObjectType = "mapobject.type"
	AttrObjectUID  = "mapobject.uid"
	AttrBatchSize  = "mapobject.batch_size"
	AttrZoom       = "bbox.zoom"
	AttrFeatures   = "bbox.features"
	AttrUserID     = "user.id"
)
