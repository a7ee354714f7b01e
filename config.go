package wetarea

const (
	SHP_DRIVER_NAME = "ESRI Shapefile"
	MEM_DRIVER_NAME = "MEM"
	ENCODING_OPTION = "ENCODING=UTF-8"

	AUTHORITY_NODE = "AUTHORITY"
	EPSG_AUTHORITY = "EPSG"
)
