package resources

type ResourceType int

/** @brief Pre-defined resource types. */
const (
	/** @brief Unknown or unsupported resource type. */
	ResourceTypeNone ResourceType = iota
	/** @brief Binary resource type. */
	ResourceTypeBinary
	/** @brief Image resource type, decoded into a texture. */
	ResourceTypeImage
	/** @brief Scalable (TrueType/OpenType) font resource type. */
	ResourceTypeSystemFont
	/** @brief Bitmap font resource type. */
	ResourceTypeBitmapFont
	/** @brief Custom resource type. Used by loaders outside the core engine. */
	ResourceTypeCustom
)

func (rt ResourceType) String() string {
	switch rt {
	case ResourceTypeBinary:
		return "binary"
	case ResourceTypeImage:
		return "image"
	case ResourceTypeSystemFont:
		return "system_font"
	case ResourceTypeBitmapFont:
		return "bitmap_font"
	case ResourceTypeCustom:
		return "custom"
	default:
		return "none"
	}
}
